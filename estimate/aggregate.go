package estimate

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are derived from a document and never edited directly.
type Totals struct {
	GrandTotal    float64            `json:"grand_total"`
	SectionTotals map[string]float64 `json:"section_totals"`
}

// ParseNumber parses decimal text with an optional exponent. Anything else,
// including hex and underscore-separated literals, is zero.
func ParseNumber(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	// Magnitudes far outside float64 range are zero before any big.Int work.
	if mag := int(d.Exponent()) + d.NumDigits(); mag > 310 || mag < -330 {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

// UnitCostMajor converts an item's minor-unit cost to major units.
func UnitCostMajor(it Item) float64 {
	return ParseNumber(it.UnitCost) / 100
}

// LineTotal is quantity times unit cost in major units.
func LineTotal(it Item) float64 {
	return ParseNumber(it.Quantity) * UnitCostMajor(it)
}

// SectionTotal sums the line totals of a section in item order.
func SectionTotal(s Section) float64 {
	var sum float64
	for _, it := range s.Items {
		sum += LineTotal(it)
	}
	return sum
}

// ComputeTotals returns one subtotal per section and the grand total,
// accumulated in document order.
func ComputeTotals(doc Document) Totals {
	totals := Totals{SectionTotals: make(map[string]float64, len(doc.Sections))}
	for _, s := range doc.Sections {
		sub := SectionTotal(s)
		totals.SectionTotals[s.ID] = sub
		totals.GrandTotal += sub
	}
	return totals
}
