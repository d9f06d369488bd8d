// Package money holds the fixed-point helpers used for prices and order totals.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every stored amount is rounded to.
const Scale int32 = 2

// Precision is the total number of digits a stored amount may carry,
// Scale of them after the point.
const Precision int32 = 10

// IntegerDigits counts the digits of d left of the decimal point, or a
// non-positive number when |d| < 1. It reads only the coefficient and
// exponent, so it is safe on literals such as "1e20000000".
func IntegerDigits(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

// Canonical rounds d half-even to Scale places.
func Canonical(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// SumTotal returns the exact sum of prices rounded to Scale places.
// An empty input yields 0.00.
func SumTotal(prices []decimal.Decimal) decimal.Decimal {
	total := decimal.NewFromInt(0)
	for _, p := range prices {
		total = total.Add(p)
	}
	return Canonical(total)
}

// Format renders d with exactly Scale decimal places.
func Format(d decimal.Decimal) string {
	return Canonical(d).StringFixed(Scale)
}

// Parse reads a decimal literal without going through float64.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
