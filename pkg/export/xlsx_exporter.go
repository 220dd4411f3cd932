package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet of a workbook: a styled header row followed by data rows.
type Sheet struct {
	Name        string
	Headers     []string
	Rows        [][]interface{}
	ColumnWidth float64
}

// Number is a numeric cell written with an Excel number format such as "0.00".
type Number struct {
	Value  float64
	Format string
}

// HeaderStyle describes the look of every header row.
type HeaderStyle struct {
	FillColor string
	FontColor string
	FontSize  float64
}

// DefaultHeaderStyle is indigo fill with bold white 12pt text.
var DefaultHeaderStyle = HeaderStyle{FillColor: "4F46E5", FontColor: "FFFFFF", FontSize: 12}

// XLSXExporter renders sheets into an .xlsx workbook.
type XLSXExporter struct {
	header HeaderStyle
}

// NewXLSXExporter builds a workbook exporter using style for header rows.
func NewXLSXExporter(style HeaderStyle) *XLSXExporter {
	if style.FillColor == "" {
		style = DefaultHeaderStyle
	}
	return &XLSXExporter{header: style}
}

// ContentType reports the MIME type of rendered output.
func (e *XLSXExporter) ContentType() string {
	return xlsxContentType
}

// Render writes every sheet in order; the first sheet becomes the active one.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(e.headerStyle())
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	numberStyles := map[string]int{}
	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if len(sheet.Headers) == 0 {
			return nil, fmt.Errorf("sheet %q requires at least one header", sheet.Name)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}
		if err := e.writeSheet(f, sheet, headerStyle, numberStyles); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeSheet(f *excelize.File, sheet Sheet, headerStyle int, numberStyles map[string]int) error {
	for col, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}

	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
	if err := f.SetCellStyle(sheet.Name, first, last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		var numbers []int
		for i, v := range row {
			if n, ok := v.(Number); ok {
				values[i] = n.Value
				numbers = append(numbers, i)
				continue
			}
			values[i] = v
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
		for _, col := range numbers {
			if err := formatNumber(f, sheet.Name, col+1, r+2, row[col].(Number).Format, numberStyles); err != nil {
				return err
			}
		}
	}

	if sheet.ColumnWidth > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, "A", lastCol, sheet.ColumnWidth); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

// formatNumber styles one cell, reusing a style per distinct format.
func formatNumber(f *excelize.File, sheet string, col, row int, format string, styles map[string]int) error {
	if format == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	id, ok := styles[format]
	if !ok {
		numFmt := format
		if id, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
			return fmt.Errorf("create number style %q: %w", format, err)
		}
		styles[format] = id
	}
	if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}
	return nil
}

func (e *XLSXExporter) headerStyle() *excelize.Style {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.header.FillColor}},
		Font: &excelize.Font{Bold: true, Color: e.header.FontColor, Size: e.header.FontSize},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{border("left"), border("right"), border("top"), border("bottom")},
	}
}
