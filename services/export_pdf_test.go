package services

import (
	"testing"
)

func TestGeneratePDF_Estimate(t *testing.T) {
	doc, totals := sampleEstimate()
	data := BuildExportData(doc, totals, "2025-01-15")

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePDF_EmptyRows(t *testing.T) {
	data := ExportData{
		Title:       "Estimate",
		CreatedDate: "2025-01-15",
		Rows:        []ExportRow{},
	}

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestGeneratePDF_ManyRows(t *testing.T) {
	data := ExportData{Title: "Estimate #9", CreatedDate: "2025-01-15"}
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, ExportRow{
			Level:      1,
			Index:      "1." + FormatQty(float64(i+1)),
			TypeName:   "Material",
			SourceName: "Line",
			Qty:        1,
			UnitCost:   2.5,
			Unit:       "Each",
			Total:      2.5,
			Taxed:      i%2 == 0,
		})
	}
	data.GrandTotal = 300

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}
