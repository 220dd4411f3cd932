package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"email", "role"},
		Rows:    []map[string]string{{"email": "a@agu.edu", "role": "Student"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "email,role\na@agu.edu,Student\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestXLSXExporterWritesStyledSheets(t *testing.T) {
	exp := NewXLSXExporter(HeaderStyle{})
	out, err := exp.Render([]Sheet{
		{Name: "Summary Metrics", Headers: []string{"Metric", "Value"}, Rows: [][]interface{}{{"Total Sessions", 4}}, ColumnWidth: 25},
		{Name: "Sessions Detail", Headers: []string{"ID", "Date"}, ColumnWidth: 20},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary Metrics", "Sessions Detail"}, f.GetSheetList())
	value, err := f.GetCellValue("Summary Metrics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total Sessions", value)

	width, err := f.GetColWidth("Summary Metrics", "B")
	require.NoError(t, err)
	assert.Equal(t, 25.0, width)

	styleID, err := f.GetCellStyle("Sessions Detail", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
	assert.Contains(t, strings.ToUpper(strings.Join(style.Fill.Color, "")), "4F46E5")
}

func TestXLSXExporterWritesFormattedNumbers(t *testing.T) {
	out, err := NewXLSXExporter(DefaultHeaderStyle).Render([]Sheet{{
		Name:    "Summary Metrics",
		Headers: []string{"Metric", "Value"},
		Rows: [][]interface{}{
			{"Average Rating", Number{Value: 4.5, Format: "0.00"}},
			{"Median Rating", Number{Value: 3.25, Format: "0.00"}},
		},
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	raw, err := f.GetCellValue("Summary Metrics", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "4.5", raw)

	shown, err := f.GetCellValue("Summary Metrics", "B2")
	require.NoError(t, err)
	assert.Equal(t, "4.50", shown)

	first, err := f.GetCellStyle("Summary Metrics", "B2")
	require.NoError(t, err)
	second, err := f.GetCellStyle("Summary Metrics", "B3")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	style, err := f.GetStyle(first)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, "0.00", *style.CustomNumFmt)
}

func TestXLSXExporterRejectsEmpty(t *testing.T) {
	_, err := NewXLSXExporter(DefaultHeaderStyle).Render(nil)
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Report{
		Title:   "PAL Analytics Report",
		Summary: []Metric{{Label: "Total Sessions", Value: "12"}},
		Sections: []Section{{
			Title: "Top Tutors",
			Data:  Dataset{Headers: []string{"Tutor", "Sessions"}, Rows: []map[string]string{{"Tutor": "Sara Ali", "Sessions": "5"}}},
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsHeaderlessSection(t *testing.T) {
	_, err := NewPDFExporter().Render(Report{Sections: []Section{{Title: "Empty"}}})
	assert.Error(t, err)
}
