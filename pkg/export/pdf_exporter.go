package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Metric is a labelled scalar shown in the report summary block.
type Metric struct {
	Label string
	Value string
}

// Section is a titled table inside a report.
type Section struct {
	Title string
	Data  Dataset
}

// Report is the document rendered by PDFExporter.
type Report struct {
	Title    string
	Subtitle string
	Summary  []Metric
	Sections []Section
}

// PDFExporter renders reports into a simple tabular A4 PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates the PDF document for report.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(report.Title), "", 1, "C", false, 0, "")
	}
	if report.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(report.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if len(report.Summary) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
		for _, m := range report.Summary {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(95, 7, tr(m.Label), "1", 0, "", false, 0, "")
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(95, 7, tr(m.Value), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	for _, section := range report.Sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("section %q requires at least one header", section.Title)
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "", false, 0, "")

		colWidth := 190.0 / float64(len(section.Data.Headers))
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(79, 70, 229)
		pdf.SetTextColor(255, 255, 255)
		for _, header := range section.Data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Arial", "", 9)
		if len(section.Data.Rows) == 0 {
			pdf.CellFormat(190, 7, "No data", "1", 1, "C", false, 0, "")
		}
		for _, row := range section.Data.Rows {
			for _, header := range section.Data.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
