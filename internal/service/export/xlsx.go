package export

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSX writes every table to its own sheet and returns the workbook bytes.
func XLSX(tables ...Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, errors.New("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}

	emphasisStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating total style")
	}

	for i, t := range tables {
		sheet := t.Sheet
		if sheet == "" {
			sheet = defaultSheet
		}

		if i == 0 {
			if err = f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, errors.Wrapf(err, "naming sheet %s", sheet)
			}
		} else if _, err = f.NewSheet(sheet); err != nil {
			return nil, errors.Wrapf(err, "creating sheet %s", sheet)
		}

		if err = writeSheet(f, sheet, t, headerStyle, emphasisStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}

	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t Table, headerStyle, emphasisStyle int) error {
	rowNum := 1

	if len(t.Headers) > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		header := make([]interface{}, len(t.Headers))
		for i, h := range t.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet, cell, &header); err != nil {
			return errors.Wrapf(err, "writing %s header", sheet)
		}

		last, _ := excelize.CoordinatesToCellName(len(t.Headers), rowNum)
		if err := f.SetCellStyle(sheet, cell, last, headerStyle); err != nil {
			return errors.Wrapf(err, "styling %s header", sheet)
		}
		rowNum++
	}

	for _, row := range t.Rows {
		cells := make([]interface{}, len(row.Cells))
		copy(cells, row.Cells)
		if row.Indent > 0 && len(cells) > 0 {
			if s, ok := cells[0].(string); ok {
				cells[0] = strings.Repeat("  ", row.Indent) + s
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, rowNum)
		}

		if row.Emphasis && len(cells) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(cells), rowNum)
			if err := f.SetCellStyle(sheet, cell, last, emphasisStyle); err != nil {
				return errors.Wrapf(err, "styling %s row %d", sheet, rowNum)
			}
		}
		rowNum++
	}

	for i := range t.Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, t.width(i)); err != nil {
			return errors.Wrapf(err, "sizing %s column %s", sheet, col)
		}
	}

	return nil
}
