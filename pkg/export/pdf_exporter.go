package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders schedule datasets into a tabular PDF. Wide schedules
// (exam calendars, multi-room seating charts) switch to landscape, and
// narrow bookkeeping columns like Hour or Row give their width to the
// descriptive ones.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Columns that hold a single digit or a short code; everything else gets a
// double share of the page width.
var narrowColumns = map[string]bool{
	"Hour":     true,
	"Duration": true,
	"Column":   true,
	"Row":      true,
	"Slot":     true,
	"Batch":    true,
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation := "P"
	pageWidth := 190.0
	if len(data.Headers) > 6 {
		orientation = "L"
		pageWidth = 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	widths := columnWidths(data.Headers, pageWidth)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "L"
			if narrowColumns[header] {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, row[header], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	footer := fmt.Sprintf("%d entries, generated %s", len(data.Rows), time.Now().Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 5, footer, "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits the usable page width into shares: one for a narrow
// column, two for a descriptive one.
func columnWidths(headers []string, pageWidth float64) []float64 {
	shares := 0
	for _, header := range headers {
		if narrowColumns[header] {
			shares++
		} else {
			shares += 2
		}
	}
	unit := pageWidth / float64(shares)
	widths := make([]float64, len(headers))
	for i, header := range headers {
		if narrowColumns[header] {
			widths[i] = unit
		} else {
			widths[i] = 2 * unit
		}
	}
	return widths
}
