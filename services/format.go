// Package services formats estimate values for display and builds Excel and
// PDF exports of an estimate.
package services

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency formats an amount in dollars with thousands separators and
// exactly 2 decimal places (e.g., $1,234.56). Negative amounts are prefixed
// with a minus sign (-$12.50).
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	// Round first so that -0.001 does not render as -$0.00.
	rounded := math.Round(amount*100) / 100
	if rounded == 0 {
		rounded = 0
	}

	if rounded < 0 {
		return "-$" + amountPrinter.Sprintf("%.2f", -rounded)
	}
	return "$" + amountPrinter.Sprintf("%.2f", rounded)
}

// FormatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// FormatAmount formats a plain number with 2 decimals and no grouping, as
// used in editable inputs.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
