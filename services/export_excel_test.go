package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openExcel(t *testing.T, b []byte) (*excelize.File, string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f, f.GetSheetList()[0]
}

func TestGenerateExcel_Estimate(t *testing.T) {
	doc, totals := sampleEstimate()
	data := BuildExportData(doc, totals, "2025-01-15")

	result, err := GenerateExcel(data)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateExcel() returned empty bytes")
	}

	f, sheet := openExcel(t, result)
	if sheet != "Estimate #1001" {
		t.Errorf("expected sheet name 'Estimate #1001', got %q", sheet)
	}

	cells := map[string]string{
		"A1": "Estimate #1001",
		"A2": "Date: 2025-01-15",
		"C4": "Item Name",
		"A5": "1",
		"B5": "Site Work",
		"G5": "$281.00",
		"A6": "1.1",
		"C6": "Gravel",
		"E6": "$10.50",
		"G6": "$21.00",
		"H7": "✔",
		"I7": "01-200",
		"B8": "Framing",
		"G9": "$0.00",
		"F11": "Grand Total:",
		"G11": "$281.00",
	}
	for cell, want := range cells {
		got, _ := f.GetCellValue(sheet, cell)
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	if tax, _ := f.GetCellValue(sheet, "H6"); tax != "" {
		t.Errorf("untaxed item H6 = %q, want empty", tax)
	}
}

func TestGenerateExcel_EmptyItems(t *testing.T) {
	data := ExportData{
		Title:       "Empty Estimate",
		CreatedDate: "2025-01-15",
		Rows:        []ExportRow{},
	}

	result, err := GenerateExcel(data)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateExcel() returned empty bytes")
	}
}

func TestGenerateExcel_LongTitle(t *testing.T) {
	data := ExportData{
		Title:       "This is a very long title that exceeds thirty one characters",
		CreatedDate: "2025-01-15",
	}

	result, err := GenerateExcel(data)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	_, sheet := openExcel(t, result)
	if len(sheet) > 31 {
		t.Errorf("sheet name exceeds 31 chars: %d", len(sheet))
	}
}

func TestGenerateExcel_EmptyTitle(t *testing.T) {
	result, err := GenerateExcel(ExportData{CreatedDate: "2025-01-15"})
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	_, sheet := openExcel(t, result)
	if sheet != "Estimate" {
		t.Errorf("expected default sheet name 'Estimate', got %q", sheet)
	}
}

func TestGenerateExcel_ReservedSheetCharacters(t *testing.T) {
	result, err := GenerateExcel(ExportData{Title: "Phase 1/2: [Site]?", CreatedDate: "2025-01-15"})
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	_, sheet := openExcel(t, result)
	if sheet != "Phase 1-2- (Site)" {
		t.Errorf("sheet name = %q, want %q", sheet, "Phase 1-2- (Site)")
	}
}

func TestGenerateExcel_SanitizesText(t *testing.T) {
	data := ExportData{
		Title: "Injection",
		Rows: []ExportRow{
			{Level: 1, Index: "1.1", SourceName: "=HYPERLINK(\"x\")", CostCode: "+1"},
		},
	}

	result, err := GenerateExcel(data)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	f, sheet := openExcel(t, result)
	if got, _ := f.GetCellValue(sheet, "C5"); got != "'=HYPERLINK(\"x\")" {
		t.Errorf("C5 = %q, want sanitized formula", got)
	}
	if got, _ := f.GetCellValue(sheet, "I5"); got != "'+1" {
		t.Errorf("I5 = %q, want sanitized value", got)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"normal text", "Hello", "Hello"},
		{"starts with equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"starts with plus", "+1234", "'+1234"},
		{"starts with minus", "-100", "'-100"},
		{"starts with at", "@import", "'@import"},
		{"starts with tab", "\tdata", "'\tdata"},
		{"starts with pipe", "|command", "'|command"},
		{"starts with carriage return", "\rdata", "'\rdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeExcelCell(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestThinBorders(t *testing.T) {
	borders := thinBorders()
	if len(borders) != 4 {
		t.Errorf("thinBorders() returned %d borders, want 4", len(borders))
	}
	for _, b := range borders {
		if b.Style != 1 {
			t.Errorf("border %s style = %d, want 1 (thin)", b.Type, b.Style)
		}
	}
}
