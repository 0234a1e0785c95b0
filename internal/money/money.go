// Package money normalizes euro amounts to two decimal places.
//
// Amounts are kept as arbitrary-precision decimals end to end because
// installment sums are later compared for exact equality against document
// totals. Rounding is half-up (ties away from zero), matching how totals are
// printed on the invoices themselves: 0.005 becomes 0.01, never 0.00.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned by Parse for input that is not a number.
var ErrInvalidAmount = errors.New("invalid monetary value")

// Round quantizes d to exactly two fractional digits, half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromFloat converts a binary float into a rounded monetary amount.
// Only for boundary input (JSON numbers); internal math stays decimal.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Parse reads a monetary amount from a string, accepting both "1234.56" and
// the comma-separated form found on Italian forms. An empty or malformed
// string is an error, never silently zero.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Round(d), nil
}

// Sum adds the given amounts, rounding each one first.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(Round(a))
	}
	return total
}
