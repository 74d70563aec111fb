package services

import (
	"strconv"

	"estimateboard/estimate"
)

// ExportRow represents a single row in the estimate export (section or item).
type ExportRow struct {
	Level      int    // 0 = section header, 1 = item
	Index      string // "1", "1.1", "1.2" etc
	TypeName   string
	SourceName string
	Qty        float64
	UnitCost   float64 // major units
	Unit       string
	Total      float64
	Taxed      bool
	CostCode   string
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title       string
	EstimateID  string
	CreatedDate string
	Rows        []ExportRow
	GrandTotal  float64
}

// BuildExportData flattens a document into export rows. Every item is
// included whether or not its section is collapsed; section rows carry the
// subtotal from totals.
func BuildExportData(doc estimate.Document, totals estimate.Totals, createdDate string) ExportData {
	data := ExportData{
		Title:       "Estimate #" + doc.EstimateID,
		EstimateID:  doc.EstimateID,
		CreatedDate: createdDate,
		GrandTotal:  totals.GrandTotal,
	}
	if doc.EstimateID == "" {
		data.Title = "Estimate"
	}

	for i, s := range doc.Sections {
		sectionIndex := strconv.Itoa(i + 1)
		data.Rows = append(data.Rows, ExportRow{
			Level:      0,
			Index:      sectionIndex,
			SourceName: s.Name,
			Total:      totals.SectionTotals[s.ID],
		})
		for j, it := range s.Items {
			data.Rows = append(data.Rows, ExportRow{
				Level:      1,
				Index:      sectionIndex + "." + strconv.Itoa(j+1),
				TypeName:   it.TypeName,
				SourceName: it.SourceName,
				Qty:        estimate.ParseNumber(it.Quantity),
				UnitCost:   estimate.UnitCostMajor(it),
				Unit:       it.Unit,
				Total:      estimate.LineTotal(it),
				Taxed:      it.ApplyGlobalTax,
				CostCode:   it.CostCode,
			})
		}
	}
	return data
}
