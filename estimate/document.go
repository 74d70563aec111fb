// Package estimate holds the estimate document model, the totals aggregator
// and the immutable edit operations applied to a loaded document.
package estimate

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Item is a single line of an estimate section.
// Quantity and UnitCost keep the text they were loaded or edited with;
// parsing happens only when totals are computed.
type Item struct {
	ID             string `json:"item_id"`
	TypeName       string `json:"item_type_name"`
	SourceName     string `json:"source_name"`
	Quantity       string `json:"quantity"`
	UnitCost       string `json:"unit_cost"` // minor currency units
	Unit           string `json:"unit"`
	ApplyGlobalTax bool   `json:"apply_global_tax"`
	CostCode       string `json:"cost_code"`
}

// Section groups items under a name. Collapsed is view state and defaults
// to true on load.
type Section struct {
	ID        string `json:"section_id"`
	Name      string `json:"section_name"`
	Items     []Item `json:"items"`
	Collapsed bool   `json:"collapsed"`
}

// Document is a normalized estimate.
type Document struct {
	EstimateID string    `json:"estimate_id"`
	Sections   []Section `json:"sections"`
}

// SectionIndex returns the position of the section with the given ID, or -1.
func (d Document) SectionIndex(sectionID string) int {
	for i, s := range d.Sections {
		if s.ID == sectionID {
			return i
		}
	}
	return -1
}

// Section returns the section with the given ID.
func (d Document) Section(sectionID string) (Section, bool) {
	i := d.SectionIndex(sectionID)
	if i < 0 {
		return Section{}, false
	}
	return d.Sections[i], true
}

// ItemIndex returns the position of the item with the given ID, or -1.
func (s Section) ItemIndex(itemID string) int {
	for i, it := range s.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// locateRoot finds the object that carries the sections array. Documents are
// accepted bare or wrapped in a {"data": {...}} envelope.
func locateRoot(raw []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, false
	}
	if root.Get("sections").IsArray() {
		return root, true
	}
	if data := root.Get("data"); data.IsObject() && data.Get("sections").IsArray() {
		return data, true
	}
	return gjson.Result{}, false
}

// decodeItem reads one raw item. Strings and numbers are both accepted for
// identifiers and numeric fields.
func decodeItem(r gjson.Result) Item {
	return Item{
		ID:             r.Get("item_id").String(),
		TypeName:       r.Get("item_type_name").String(),
		SourceName:     r.Get("source_name").String(),
		Quantity:       r.Get("quantity").String(),
		UnitCost:       r.Get("unit_cost").String(),
		Unit:           r.Get("unit").String(),
		ApplyGlobalTax: taxFlag(r.Get("apply_global_tax")),
		CostCode:       r.Get("cost_code").String(),
	}
}

// taxFlag normalizes the loosely typed apply_global_tax value.
// Absent, null, false, 0, "", "0" and "false" are untaxed.
func taxFlag(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return ParseTaxFlag(r.Str)
	default:
		return false
	}
}

// ParseTaxFlag interprets a textual tax flag the same way documents are
// normalized on load.
func ParseTaxFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false":
		return false
	}
	return true
}
