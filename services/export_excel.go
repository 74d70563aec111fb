package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// GenerateExcel creates an Excel file from the given ExportData and returns
// the file contents as a byte slice.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars, no reserved characters).
	sheetName := sheetNameReplacer.Replace(data.Title)
	if r := []rune(sheetName); len(r) > 31 {
		sheetName = string(r[:31])
	}
	if sheetName == "" {
		sheetName = "Estimate"
	}

	// Rename default sheet.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through I).
	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	lastCol := columns[len(columns)-1] // "I"

	// Set column widths.
	widths := []float64{6, 14, 36, 10, 14, 10, 16, 6, 12}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	st, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	// ── Header Rows (1-2) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", st.title)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A2", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A2", lastCol+"2", st.subtitle)

	// ── Row 4: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Type", "Item Name", "Qty", "Unit Cost", "Unit", "Total", "Tax", "Cost Code"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", st.header)

	// ── Data Rows (starting row 5) ──────────────────────────────────────

	row := 5
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)

		if r.Level == 0 {
			if err := f.MergeCell(sheetName, "B"+rowStr, "F"+rowStr); err != nil {
				return nil, fmt.Errorf("merge section %s: %w", r.Index, err)
			}
			f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.SourceName))
			f.SetCellValue(sheetName, "G"+rowStr, FormatCurrency(r.Total))
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, st.section)
			row++
			continue
		}

		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.TypeName))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.SourceName))
		f.SetCellValue(sheetName, "D"+rowStr, r.Qty)
		f.SetCellValue(sheetName, "E"+rowStr, FormatCurrency(r.UnitCost))
		f.SetCellValue(sheetName, "F"+rowStr, sanitizeExcelCell(r.Unit))
		f.SetCellValue(sheetName, "G"+rowStr, FormatCurrency(r.Total))
		if r.Taxed {
			f.SetCellValue(sheetName, "H"+rowStr, "✔")
		}
		f.SetCellValue(sheetName, "I"+rowStr, sanitizeExcelCell(r.CostCode))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, st.item)

		row++
	}

	// ── Summary Row ─────────────────────────────────────────────────────

	row++
	summaryRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "F"+summaryRow, "Grand Total:")
	f.SetCellStyle(sheetName, "F"+summaryRow, "F"+summaryRow, st.summaryLabel)
	f.SetCellValue(sheetName, "G"+summaryRow, FormatCurrency(data.GrandTotal))
	f.SetCellStyle(sheetName, "G"+summaryRow, "G"+summaryRow, st.summaryValue)

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// excelStyles holds the style IDs used by GenerateExcel.
type excelStyles struct {
	title, subtitle, header, section, item, summaryLabel, summaryValue int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var st excelStyles
	bold := func(size float64) *excelize.Font { return &excelize.Font{Bold: true, Size: size} }
	defs := []struct {
		name  string
		dst   *int
		style *excelize.Style
	}{
		{"title", &st.title, &excelize.Style{Font: bold(16)}},
		{"subtitle", &st.subtitle, &excelize.Style{Font: &excelize.Font{Size: 11}}},
		{"header", &st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{"section", &st.section, &excelize.Style{
			Font:   bold(10),
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EEEEEE"}, Pattern: 1},
			Border: thinBorders(),
		}},
		{"item", &st.item, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{"summary label", &st.summaryLabel, &excelize.Style{Font: bold(11), Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{"summary value", &st.summaryValue, &excelize.Style{Font: bold(11)}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return excelStyles{}, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return st, nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
