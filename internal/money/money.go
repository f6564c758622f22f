// Package money provides the fixed-point currency representation used
// throughout Tabby. All amounts are stored and computed as integer minor
// units (cents); floating-point dollars exist only at the API boundary.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer minor units.
// Negative values are valid (discounts, corrections).
type Cents int64

// FromDollars converts a float dollar amount to Cents.
// It rejects inputs with more than two decimal places instead of silently
// rounding them, since sub-cent prices on a receipt almost always indicate
// a parsing error upstream.
func FromDollars(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount %v is not a finite number", f)
	}

	// Scale by 1000 to check for a third decimal place. Round first to
	// shake out binary representation artifacts (1.10*1000 = 1099.999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("amount %v has more than two decimal places", f)
	}

	return Cents(math.Round(f * 100)), nil
}

// FromDecimal rounds a decimal cent amount to the nearest whole cent.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(0).IntPart())
}

// Dollars returns the amount as a float64 dollar value for JSON payloads.
func (c Cents) Dollars() float64 {
	return float64(c) / 100.0
}

// Decimal returns the amount as a decimal number of cents, for use in the
// split engine's fractional intermediate math.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c))
}

// String formats the amount as a plain dollar string, e.g. "12.34" or "-0.05".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
