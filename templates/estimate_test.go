package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleView() EstimateViewData {
	return EstimateViewData{
		EstimateID: "1001",
		Title:      "Estimate #1001",
		GrandTotal: "$867.80",
		Sections: []SectionView{
			{
				ID:        "1",
				Name:      "Site Work",
				Collapsed: true,
				Total:     "$281.00",
				Items: []ItemView{
					{ID: "11", TypeName: "Material", SourceName: "Gravel", Quantity: "2", UnitCost: "10.5", Unit: "Ton", Total: "$21.00", CostCode: "01-100"},
					{ID: "12", TypeName: "Labor", SourceName: "Grading", Quantity: "4", UnitCost: "65", Unit: "Hour", Total: "$260.00", Taxed: true, CostCode: "01-200"},
				},
			},
			{ID: "2", Name: "Framing", Total: "$586.80"},
		},
	}
}

func TestEstimatePage_FullDocument(t *testing.T) {
	html := render(t, EstimatePage(sampleView()))

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Estimate #1001</title>")
	assert.Contains(t, html, `id="estimate-content"`)
	assert.Contains(t, html, "Grand Total: $867.80")
	assert.Contains(t, html, "Site Work")
	assert.Contains(t, html, "Framing")
}

func TestPage_ShowsAndClearsFlashToast(t *testing.T) {
	html := render(t, EstimatePage(sampleView()))

	assert.Contains(t, html, `<div id="toast"></div>`)
	assert.Contains(t, html, `addEventListener("showToast"`)
	assert.Contains(t, html, "flash_toast=([^;]*)")
	assert.Contains(t, html, `"flash_toast=; Max-Age=0; Path=/"`)
}

func TestEstimateContent_IsFragment(t *testing.T) {
	html := render(t, EstimateContent(sampleView()))

	assert.NotContains(t, html, "<html")
	assert.True(t, strings.HasPrefix(html, `<div id="estimate-content"`))
}

func TestSectionCard_Collapsed(t *testing.T) {
	html := render(t, SectionCard("1001", sampleView().Sections[0]))

	assert.Contains(t, html, `id="section-1"`)
	assert.Contains(t, html, `class="table-container hide"`)
	assert.Contains(t, html, "➕")
	assert.Contains(t, html, `hx-post="/estimates/1001/sections/1/toggle"`)
	assert.Contains(t, html, "Section Total: $281.00")
}

func TestSectionCard_Expanded(t *testing.T) {
	s := sampleView().Sections[0]
	s.Collapsed = false

	html := render(t, SectionCard("1001", s))

	assert.Contains(t, html, `class="table-container"`)
	assert.NotContains(t, html, `table-container hide`)
	assert.Contains(t, html, "➖")
}

func TestSectionCard_ItemInputs(t *testing.T) {
	html := render(t, SectionCard("1001", sampleView().Sections[0]))

	assert.Contains(t, html, `name="quantity" value="2" hx-patch="/estimates/1001/sections/1/items/11"`)
	assert.Contains(t, html, `name="unit_cost" value="10.5"`)
	assert.Contains(t, html, `hx-target="#section-1"`)
	assert.Equal(t, 1, strings.Count(html, "✔"))
	assert.Contains(t, html, "01-200")
}

func TestSectionCard_EscapesText(t *testing.T) {
	s := SectionView{ID: "x", Name: "<script>alert(1)</script>", Items: []ItemView{{ID: "a b", SourceName: `"quoted"`}}}

	html := render(t, SectionCard("e/1", s))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&#34;quoted&#34;")
	assert.Contains(t, html, "/estimates/e%2F1/sections/x/items/a%20b")
}

func TestEstimateToolbar_UndoState(t *testing.T) {
	data := sampleView()

	html := render(t, EstimateToolbar(data, false))
	assert.Contains(t, html, "disabled")
	assert.NotContains(t, html, "hx-swap-oob")

	data.CanUndo = true
	html = render(t, EstimateToolbar(data, true))
	assert.NotContains(t, html, "disabled")
	assert.Contains(t, html, `hx-swap-oob="true"`)
	assert.Contains(t, html, `href="/estimates/1001/export/excel"`)
}

func TestEstimateContent_LoadError(t *testing.T) {
	html := render(t, EstimateContent(EstimateViewData{EstimateID: "9", LoadError: "load estimate: no sections array"}))

	assert.Contains(t, html, `class="error"`)
	assert.Contains(t, html, "no sections array")
	assert.Contains(t, html, `hx-post="/estimates/9/reload"`)
	assert.NotContains(t, html, "section-card")
}

func TestEstimateContent_Empty(t *testing.T) {
	html := render(t, EstimatePage(EstimateViewData{Empty: true}))

	assert.Contains(t, html, "No estimate data available")
	assert.Contains(t, html, "<title>Estimate</title>")
}
