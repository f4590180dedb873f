package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

const (
	utf8Family = "body"
	coreFamily = "Arial"

	rowHeight = 6.0
	mmPerChar = 2.2
)

// PDFOptions controls pdf rendering. FontPath names a TrueType font that is
// embedded for non-latin text; without it the core Arial font is used.
type PDFOptions struct {
	FontPath    string
	GeneratedAt time.Time
}

// PDF renders the tables one after another on landscape A4 pages.
func PDF(opts PDFOptions, tables ...Table) ([]byte, error) {
	fontDir := ""
	if opts.FontPath != "" {
		fontDir = filepath.Dir(opts.FontPath)
	}

	pdf := gofpdf.New("L", "mm", "A4", fontDir)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)

	family := coreFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		fontFile := filepath.Base(opts.FontPath)
		pdf.AddUTF8Font(utf8Family, "", fontFile)
		pdf.AddUTF8Font(utf8Family, "B", fontFile)
		family = utf8Family
		tr = func(s string) string { return s }
	}

	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	for _, t := range tables {
		pdf.AddPage()

		if t.Title != "" {
			pdf.SetFont(family, "B", 14)
			pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
		}
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 5, "Generated on: "+generated.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
		pdf.Ln(3)

		widths := pdfWidths(pdf, t)

		header := func() {
			pdf.SetFont(family, "B", 9)
			pdf.SetFillColor(200, 220, 240)
			for i, h := range t.Headers {
				pdf.CellFormat(widths[i], rowHeight+1, tr(h), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
		}
		header()

		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()

		for _, row := range t.Rows {
			if pdf.GetY()+rowHeight > pageHeight-bottom {
				pdf.AddPage()
				header()
			}

			style := ""
			if row.Emphasis {
				style = "B"
				pdf.SetFillColor(242, 242, 242)
			}
			pdf.SetFont(family, style, 8)

			for i := range t.Headers {
				text, align := "", "L"
				if i < len(row.Cells) {
					text = cellText(row.Cells[i])
					if _, ok := row.Cells[i].(string); !ok {
						align = "R"
					}
				}
				if i == 0 {
					text = strings.Repeat("  ", row.Indent) + text
				}
				pdf.CellFormat(widths[i], rowHeight, tr(text), "1", 0, align, row.Emphasis, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "rendering pdf")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}

	return buf.Bytes(), nil
}

// pdfWidths scales the table's character widths to fill the printable width.
func pdfWidths(pdf *gofpdf.Fpdf, t Table) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	printable := pageWidth - left - right

	widths := make([]float64, len(t.Headers))
	sum := 0.0
	for i := range widths {
		widths[i] = t.width(i) * mmPerChar
		sum += widths[i]
	}
	if sum > 0 {
		for i := range widths {
			widths[i] = widths[i] * printable / sum
		}
	}

	return widths
}
