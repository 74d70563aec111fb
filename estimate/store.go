package estimate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

// Mutable item fields, named as in the source document.
const (
	FieldItemTypeName   = "item_type_name"
	FieldSourceName     = "source_name"
	FieldQuantity       = "quantity"
	FieldUnitCost       = "unit_cost"
	FieldUnit           = "unit"
	FieldApplyGlobalTax = "apply_global_tax"
	FieldCostCode       = "cost_code"
)

// DefaultUndoDepth bounds the edit history kept by a Store.
const DefaultUndoDepth = 50

// ErrNotLoaded is returned by Store operations before a document is loaded.
var ErrNotLoaded = errors.New("no estimate loaded")

// Load parses a raw estimate document, marks every section collapsed and
// computes the initial totals. A document without a locatable sections array
// yields a *LoadError and zero values.
func Load(raw []byte) (Document, Totals, error) {
	if len(raw) == 0 {
		return Document{}, Totals{}, &LoadError{Reason: "empty document"}
	}
	root, ok := locateRoot(raw)
	if !ok {
		return Document{}, Totals{}, &LoadError{Reason: "no sections array"}
	}

	rawSections := root.Get("sections").Array()
	doc := Document{
		EstimateID: root.Get("estimate_id").String(),
		Sections:   make([]Section, 0, len(rawSections)),
	}
	seen := make(map[string]bool, len(rawSections))
	for i, rs := range rawSections {
		sec, err := decodeSection(rs)
		if err != nil {
			return Document{}, Totals{}, &LoadError{Reason: fmt.Sprintf("section %d", i), Err: err}
		}
		if seen[sec.ID] {
			return Document{}, Totals{}, &LoadError{Reason: fmt.Sprintf("duplicate section_id %q", sec.ID)}
		}
		seen[sec.ID] = true
		doc.Sections = append(doc.Sections, sec)
	}
	return doc, ComputeTotals(doc), nil
}

func decodeSection(r gjson.Result) (Section, error) {
	if !r.IsObject() {
		return Section{}, errors.New("not an object")
	}
	sec := Section{
		ID:        r.Get("section_id").String(),
		Name:      r.Get("section_name").String(),
		Collapsed: true,
	}
	rawItems := r.Get("items")
	if rawItems.Exists() && rawItems.Type != gjson.Null && !rawItems.IsArray() {
		return Section{}, errors.New("items is not a list")
	}
	list := rawItems.Array()
	sec.Items = make([]Item, 0, len(list))
	seen := make(map[string]bool, len(list))
	for j, ri := range list {
		if !ri.IsObject() {
			return Section{}, fmt.Errorf("item %d: not an object", j)
		}
		it := decodeItem(ri)
		if seen[it.ID] {
			return Section{}, fmt.Errorf("duplicate item_id %q", it.ID)
		}
		seen[it.ID] = true
		sec.Items = append(sec.Items, it)
	}
	return sec, nil
}

// setField returns a copy of it with one field replaced. Values are stored as
// given; numeric text is only interpreted by the aggregator.
func setField(it Item, field, value string) (Item, error) {
	switch field {
	case FieldItemTypeName:
		it.TypeName = value
	case FieldSourceName:
		it.SourceName = value
	case FieldQuantity:
		it.Quantity = value
	case FieldUnitCost:
		it.UnitCost = value
	case FieldUnit:
		it.Unit = value
	case FieldApplyGlobalTax:
		it.ApplyGlobalTax = ParseTaxFlag(value)
	case FieldCostCode:
		it.CostCode = value
	default:
		return it, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return it, nil
}

// UpdateItemField sets one field of one item and returns the new document with
// its totals. Only the path to the changed item is copied. When the section,
// item or field is unknown the input document is returned with its own totals
// and an error.
func UpdateItemField(doc Document, sectionID, itemID, field, value string) (Document, Totals, error) {
	si := doc.SectionIndex(sectionID)
	if si < 0 {
		return doc, ComputeTotals(doc), &NotFoundError{SectionID: sectionID}
	}
	ii := doc.Sections[si].ItemIndex(itemID)
	if ii < 0 {
		return doc, ComputeTotals(doc), &NotFoundError{SectionID: sectionID, ItemID: itemID}
	}

	updated, err := setField(doc.Sections[si].Items[ii], field, value)
	if err != nil {
		return doc, ComputeTotals(doc), err
	}

	items := slices.Clone(doc.Sections[si].Items)
	items[ii] = updated
	sections := slices.Clone(doc.Sections)
	sections[si].Items = items

	next := Document{EstimateID: doc.EstimateID, Sections: sections}
	return next, ComputeTotals(next), nil
}

// ToggleSectionVisibility flips the collapsed flag of one section. Totals do
// not depend on visibility and are not recomputed.
func ToggleSectionVisibility(doc Document, sectionID string) (Document, error) {
	si := doc.SectionIndex(sectionID)
	if si < 0 {
		return doc, &NotFoundError{SectionID: sectionID}
	}
	sections := slices.Clone(doc.Sections)
	sections[si].Collapsed = !sections[si].Collapsed
	return Document{EstimateID: doc.EstimateID, Sections: sections}, nil
}

// Store keeps the current document, its totals and a bounded history of item
// edits. It is not safe for concurrent use.
type Store struct {
	doc       Document
	totals    Totals
	loaded    bool
	history   []Document
	undoDepth int
}

// NewStore returns an empty store keeping at most undoDepth edits for Undo.
// A negative depth falls back to DefaultUndoDepth.
func NewStore(undoDepth int) *Store {
	if undoDepth < 0 {
		undoDepth = DefaultUndoDepth
	}
	return &Store{undoDepth: undoDepth}
}

// Load replaces the current document with a freshly parsed one. On failure the
// store is left without a document.
func (s *Store) Load(raw []byte) error {
	doc, _, err := Load(raw)
	if err != nil {
		s.Reset()
		return err
	}
	s.Set(doc)
	return nil
}

// Set installs an already normalized document and clears the edit history.
func (s *Store) Set(doc Document) {
	s.doc = doc
	s.totals = ComputeTotals(doc)
	s.loaded = true
	s.history = nil
}

// Reset drops the document and its history.
func (s *Store) Reset() {
	s.doc = Document{}
	s.totals = Totals{}
	s.loaded = false
	s.history = nil
}

func (s *Store) Loaded() bool       { return s.loaded }
func (s *Store) Document() Document { return s.doc }
func (s *Store) Totals() Totals     { return s.totals }
func (s *Store) CanUndo() bool      { return len(s.history) > 0 }

// UpdateItemField applies an edit to the current document.
func (s *Store) UpdateItemField(sectionID, itemID, field, value string) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	next, totals, err := UpdateItemField(s.doc, sectionID, itemID, field, value)
	if err != nil {
		return err
	}
	s.remember(s.doc)
	s.doc, s.totals = next, totals
	return nil
}

// ToggleSection flips a section's visibility. Toggles are not undoable.
func (s *Store) ToggleSection(sectionID string) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	next, err := ToggleSectionVisibility(s.doc, sectionID)
	if err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Undo restores the document as it was before the last item edit, keeping
// the current visibility of each section.
func (s *Store) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	sections := slices.Clone(prev.Sections)
	for i := range sections {
		if cur, ok := s.doc.Section(sections[i].ID); ok {
			sections[i].Collapsed = cur.Collapsed
		}
	}
	s.doc = Document{EstimateID: prev.EstimateID, Sections: sections}
	s.totals = ComputeTotals(s.doc)
	return true
}

func (s *Store) remember(doc Document) {
	if s.undoDepth == 0 {
		return
	}
	if len(s.history) >= s.undoDepth {
		s.history = slices.Delete(s.history, 0, len(s.history)-s.undoDepth+1)
	}
	s.history = append(s.history, doc)
}
