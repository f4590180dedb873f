package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Sheet:   "Manpower",
		Title:   "Manpower 2024-06-01",
		Headers: []string{"Department", "Scanned", "Not scanned"},
		Widths:  []float64{30, 10, 10},
		Rows: []Row{
			{Cells: []interface{}{"Cutting", 4, 1}, Indent: 2},
			{Cells: []interface{}{"Total Cutting", 4, 1}, Emphasis: true},
			{Cells: []interface{}{"Rate", 0.5}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, ContentTypeXLSX, f.ContentType())

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, f.ContentType())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestXLSX(t *testing.T) {
	second := Table{Sheet: "Other", Headers: []string{"A"}, Rows: []Row{{Cells: []interface{}{"x"}}}}

	data, err := XLSX(sampleTable(), second)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Manpower", "Other"}, f.GetSheetList())

	rows, err := f.GetRows("Manpower")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Department", "Scanned", "Not scanned"}, rows[0])
	assert.Equal(t, []string{"    Cutting", "4", "1"}, rows[1])
	assert.Equal(t, "Total Cutting", rows[2][0])
	assert.Equal(t, "0.5", rows[3][1])

	other, err := f.GetRows("Other")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"x"}}, other)
}

func TestXLSX_NoTables(t *testing.T) {
	_, err := XLSX()
	assert.Error(t, err)
}

func TestPDF(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 60; i++ {
		table.Rows = append(table.Rows, Row{Cells: []interface{}{"Line", i, i}})
	}
	table.Rows = append(table.Rows, Row{})

	data, err := PDF(PDFOptions{GeneratedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}, table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDF_MissingFont(t *testing.T) {
	_, err := PDF(PDFOptions{FontPath: "does-not-exist.ttf"}, sampleTable())
	assert.Error(t, err)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "12", cellText(12))
	assert.Equal(t, "60.5", cellText(60.5))
	assert.Equal(t, "true", cellText(true))
}
