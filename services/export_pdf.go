package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF creates a PDF document from estimate export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	// --- Header Section ---
	addHeader(m, data)

	// --- Table Header ---
	addTableHeader(m)

	// --- Table Body ---
	for _, r := range data.Rows {
		addTableRow(m, r)
	}

	// --- Summary Section ---
	addSummary(m, data)

	// --- Footer with generated date ---
	addFooter(m, data)

	// Generate PDF bytes
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title and date to the PDF.
func addHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

// pdfColumns are the table columns and their grid widths (sum 12).
var pdfColumns = []struct {
	title string
	width int
	left  bool
}{
	{"#", 1, false},
	{"Type", 1, false},
	{"Item Name", 3, true},
	{"Qty", 1, false},
	{"Unit Cost", 1, false},
	{"Unit", 1, false},
	{"Total", 2, false},
	{"Tax", 1, false},
	{"Cost Code", 1, false},
}

// addTableHeader adds the column header row for the estimate table.
func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	r := row.New(8)
	for _, c := range pdfColumns {
		style := headerText
		if c.left {
			style = headerTextLeft
		}
		r.Add(col.New(c.width).Add(text.New(c.title, style)).WithStyle(&headerCell))
	}
	m.AddRows(r)
}

// addTableRow adds a section or item row to the estimate table.
func addTableRow(m core.Maroto, r ExportRow) {
	baseText := props.Text{Size: 7, Align: align.Center}
	if r.Level == 0 {
		baseText.Size = 8
		baseText.Style = fontstyle.Bold
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	if r.Level == 0 {
		sectionCell := &props.Cell{BackgroundColor: &props.Color{Red: 235, Green: 235, Blue: 235}}
		m.AddRows(
			row.New(8).Add(
				col.New(1).Add(text.New(r.Index, baseText)).WithStyle(sectionCell),
				col.New(7).Add(text.New(r.SourceName, leftText)).WithStyle(sectionCell),
				col.New(2).Add(text.New(FormatCurrency(r.Total), rightText)).WithStyle(sectionCell),
				col.New(2).WithStyle(sectionCell),
			),
		)
		return
	}

	tax := ""
	if r.Taxed {
		tax = "Yes"
	}

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(r.Index, baseText)),
			col.New(1).Add(text.New(r.TypeName, baseText)),
			col.New(3).Add(text.New("  "+r.SourceName, leftText)),
			col.New(1).Add(text.New(FormatQty(r.Qty), rightText)),
			col.New(1).Add(text.New(FormatCurrency(r.UnitCost), rightText)),
			col.New(1).Add(text.New(r.Unit, baseText)),
			col.New(2).Add(text.New(FormatCurrency(r.Total), rightText)),
			col.New(1).Add(text.New(tax, baseText)),
			col.New(1).Add(text.New(r.CostCode, baseText)),
		),
	)
}

// addSummary adds the grand total at the bottom of the PDF.
func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	style := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New("Grand Total", style)).WithStyle(summaryCell),
			col.New(4).Add(text.New(FormatCurrency(data.GrandTotal), style)).WithStyle(summaryCell),
		),
	)
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
