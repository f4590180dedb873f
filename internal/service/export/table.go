// Package export renders tabular reports as xlsx workbooks and pdf documents.
package export

import (
	"fmt"
	"strconv"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return ContentTypePDF
	}
	return ContentTypeXLSX
}

type Row struct {
	Cells    []interface{}
	Emphasis bool
	Indent   int
}

// Table is one sheet of an export. Widths are column widths in characters and
// may be shorter than Headers.
type Table struct {
	Sheet   string
	Title   string
	Headers []string
	Widths  []float64
	Rows    []Row
}

func (t Table) width(col int) float64 {
	if col < len(t.Widths) && t.Widths[col] > 0 {
		return t.Widths[col]
	}
	return 14
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
