package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MajorToMinor converts a unit cost typed in major units ("10.50") into the
// minor-unit text stored on items ("1050"). Text that is not a decimal number
// is returned unchanged so that it still counts as zero in totals.
func MajorToMinor(major string) string {
	trimmed := strings.TrimSpace(major)
	if trimmed == "" {
		return "0"
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return major
	}
	return d.Mul(hundred).String()
}

// MinorToMajor renders a minor-unit cost as major-unit text with 2 decimals,
// for prefilling edit inputs.
func MinorToMajor(minor string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(minor))
	if err != nil {
		return "0.00"
	}
	return d.Div(hundred).StringFixed(2)
}
