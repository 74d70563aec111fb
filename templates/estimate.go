package templates

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// ItemView is one editable line item row.
type ItemView struct {
	ID         string
	TypeName   string
	SourceName string
	Quantity   string // numeric input value
	UnitCost   string // major units, numeric input value
	Unit       string
	Total      string
	Taxed      bool
	CostCode   string
}

// SectionView is one section card with its subtotal.
type SectionView struct {
	ID        string
	Name      string
	Collapsed bool
	Total     string
	Items     []ItemView
}

// EstimateViewData is everything the estimate page renders. LoadError is set
// when the document could not be loaded; Empty when no estimate exists.
type EstimateViewData struct {
	EstimateID string
	Title      string
	GrandTotal string
	Sections   []SectionView
	CanUndo    bool
	LoadError  string
	Empty      bool
}

// EstimatePath returns the base URL of an estimate.
func EstimatePath(estimateID string) string {
	return "/estimates/" + url.PathEscape(estimateID)
}

// SectionPath returns the base URL of a section within an estimate.
func SectionPath(estimateID, sectionID string) string {
	return EstimatePath(estimateID) + "/sections/" + url.PathEscape(sectionID)
}

// ItemPath returns the PATCH target for one item.
func ItemPath(estimateID, sectionID, itemID string) string {
	return SectionPath(estimateID, sectionID) + "/items/" + url.PathEscape(itemID)
}

// SectionElementID is the DOM id of a section card.
func SectionElementID(sectionID string) string {
	return "section-" + sectionID
}

// EstimatePage renders the full HTML page.
func EstimatePage(data EstimateViewData) templ.Component {
	title := data.Title
	if title == "" {
		title = "Estimate"
	}
	return Page(title, EstimateContent(data))
}

// EstimateContent renders the swappable page body: header, toolbar and every
// section card, or the load-failure / no-data state.
func EstimateContent(data EstimateViewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div id="estimate-content" class="estimate-container">`)

		switch {
		case data.LoadError != "":
			h.raw(`<div class="error">`)
			h.text(data.LoadError)
			h.raw(`</div>`)
			if data.EstimateID != "" {
				h.raw(`<button type="button"`)
				h.attr("hx-post", EstimatePath(data.EstimateID)+"/reload")
				h.raw(` hx-target="#estimate-content" hx-swap="outerHTML">Retry</button>`)
			}
		case data.Empty:
			h.raw(`<div class="no-data">No estimate data available</div>`)
		default:
			h.raw(`<div class="estimate-header"><h1>`)
			h.text(data.Title)
			h.raw(`</h1>`)
			h.component(ctx, EstimateToolbar(data, false))
			h.raw(`</div>`)
			for _, s := range data.Sections {
				h.component(ctx, SectionCard(data.EstimateID, s))
			}
		}

		h.raw(`</div>`)
		return h.err
	})
}

// EstimateToolbar renders the grand total with the undo, reload and export
// actions. With oob set it is marked for an HTMX out-of-band swap so item
// edits can refresh it alongside their section.
func EstimateToolbar(data EstimateViewData, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		base := EstimatePath(data.EstimateID)

		h.raw(`<div id="estimate-toolbar" class="estimate-actions"`)
		if oob {
			h.raw(` hx-swap-oob="true"`)
		}
		h.raw(`>`)

		h.raw(`<button type="button"`)
		h.attr("hx-post", base+"/undo")
		h.raw(` hx-target="#estimate-content" hx-swap="outerHTML"`)
		if !data.CanUndo {
			h.raw(` disabled`)
		}
		h.raw(`>Undo</button>`)

		h.raw(`<button type="button"`)
		h.attr("hx-post", base+"/reload")
		h.raw(` hx-target="#estimate-content" hx-swap="outerHTML" hx-confirm="Discard all edits?">Reload</button>`)

		h.raw(`<a`)
		h.attr("href", base+"/export/excel")
		h.raw(`>Excel</a><a`)
		h.attr("href", base+"/export/pdf")
		h.raw(`>PDF</a>`)

		h.raw(`<div class="grand-total">Grand Total: `)
		h.text(data.GrandTotal)
		h.raw(`</div></div>`)
		return h.err
	})
}

// SectionCard renders one section. The items table carries the "hide" class
// while the section is collapsed.
func SectionCard(estimateID string, s SectionView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		target := "#" + SectionElementID(s.ID)

		h.raw(`<div class="section-card"`)
		h.attr("id", SectionElementID(s.ID))
		h.raw(`><div class="section-header"><h2>`)

		h.raw(`<button type="button" class="hide-icon"`)
		h.attr("hx-post", SectionPath(estimateID, s.ID)+"/toggle")
		h.attr("hx-target", target)
		h.raw(` hx-swap="outerHTML">`)
		if s.Collapsed {
			h.raw("➕")
		} else {
			h.raw("➖")
		}
		h.raw(`</button> `)
		h.text(s.Name)
		h.raw(`</h2><div class="section-total">Section Total: `)
		h.text(s.Total)
		h.raw(`</div></div>`)

		h.raw(`<div class="table-container`)
		if s.Collapsed {
			h.raw(` hide`)
		}
		h.raw(`"><table><thead><tr>`)
		h.raw(`<th>Type</th><th>Item Name</th><th class="text-right">QTY</th>`)
		h.raw(`<th class="text-right">Unit Cost</th><th>Unit</th><th class="text-right">Total</th>`)
		h.raw(`<th class="text-center">Tax</th><th>Cost Code</th>`)
		h.raw(`</tr></thead><tbody>`)

		for _, it := range s.Items {
			path := ItemPath(estimateID, s.ID, it.ID)
			h.raw(`<tr><td>`)
			h.text(it.TypeName)
			h.raw(`</td><td>`)
			h.text(it.SourceName)
			h.raw(`</td><td class="text-right">`)
			numberInput(h, "quantity", it.Quantity, path, target)
			h.raw(`</td><td class="text-right">`)
			numberInput(h, "unit_cost", it.UnitCost, path, target)
			h.raw(`</td><td>`)
			h.text(it.Unit)
			h.raw(`</td><td class="text-right">`)
			h.text(it.Total)
			h.raw(`</td><td class="text-center">`)
			if it.Taxed {
				h.raw("✔")
			}
			h.raw(`</td><td>`)
			h.text(it.CostCode)
			h.raw(`</td></tr>`)
		}

		h.raw(`</tbody></table></div></div>`)
		return h.err
	})
}

func numberInput(h *htmlWriter, name, value, path, target string) {
	h.raw(`<input type="number" step="any" class="number-input"`)
	h.attr("name", name)
	h.attr("value", value)
	h.attr("hx-patch", path)
	h.raw(` hx-trigger="change"`)
	h.attr("hx-target", target)
	h.raw(` hx-swap="outerHTML">`)
}
