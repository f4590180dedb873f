package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "12", want: 12},
		{in: " 7 ", want: 7},
		{in: "3.9", want: 3},
		{in: "", want: 0},
		{in: "NaN", want: 0},
		{in: "abc", want: 0},
		{in: "-4", want: 0},
		{in: "+Inf", want: 0},
		{in: "99999999999999999999", want: 0},
		{in: "-99999999999999999999", want: 0},
		{in: "1e20", want: 0},
		{in: "9.3e18", want: 0},
		{in: "9e18", want: 9000000000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.in))
		})
	}
}

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "25", want: 25, ok: true},
		{in: "12.0", want: 12, ok: true},
		{in: "SBU-07", want: 7, ok: true},
		{in: "A12", want: 12, ok: true},
		{in: "none", ok: false},
		{in: "", ok: false},
		{in: "99999999999999999999", ok: false},
		{in: "1e20", ok: false},
		{in: "NaN", ok: false},
		{in: "SBU-99999999999999999999", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMeasure(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawRecord_Record(t *testing.T) {
	raw := RawRecord{
		WorkDate:     "2024-06-01",
		DeptCode:     " 06010100",
		DeptName:     "Cutting ",
		CountScan:    "5",
		CountNotScan: "x",
		CountPerson:  "6.0",
		DeptSBU:      "10",
		DeptSTD:      "",
	}

	r := raw.Record()

	assert.Equal(t, "2024-06-01", r.WorkDate)
	assert.Equal(t, "06010100", r.Code)
	assert.Equal(t, "Cutting", r.Name)
	assert.Equal(t, Counts{Scanned: 5, NotScanned: 0, Person: 6}, r.Counts)
	assert.Equal(t, "10", r.SBU)
	assert.Len(t, FromRaw([]RawRecord{raw, raw}), 2)
}

func TestFromRaw_OversizedCountDoesNotLeakIntoTotals(t *testing.T) {
	records := FromRaw([]RawRecord{
		{WorkDate: "2024-06-01", DeptCode: "06010101", DeptName: "Unit 1", CountScan: "5", CountPerson: "5"},
		{WorkDate: "2024-06-01", DeptCode: "06010102", DeptName: "Unit 2", CountScan: "1e20", CountPerson: "99999999999999999999"},
	})

	report, err := Build(records, Options{})
	require.NoError(t, err)

	var grand *Row
	for i := range report.Rows {
		if report.Rows[i].Kind == RowGrandTotal {
			grand = &report.Rows[i]
		}
	}
	require.NotNil(t, grand)
	assert.Equal(t, Counts{Scanned: 5, Person: 5}, grand.Counts)
}
