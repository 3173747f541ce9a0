package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts cross the API as decimal strings ("12.34") and are stored as
// int64 cents. Parsing goes through shopspring/decimal so "0.1"-style
// inputs never pick up float error.

const maxCent = 1_000_000_000_00 // one billion, sanity cap

// ParseCent converts a decimal string into cents. At most two decimal
// places are accepted.
func ParseCent(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cent := d.Mul(decimal.NewFromInt(100))
	if !cent.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	// Bound the decimal itself: IntPart truncates silently beyond int64.
	limit := decimal.NewFromInt(maxCent)
	if cent.GreaterThan(limit) || cent.LessThan(limit.Neg()) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return cent.IntPart(), nil
}

// ParsePositiveCent is ParseCent restricted to amounts > 0.
func ParsePositiveCent(s string) (int64, error) {
	v, err := ParseCent(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s", s)
	}
	return v, nil
}

// FormatCent renders cents as a two-decimal string, e.g. 1234 -> "12.34".
func FormatCent(cent int64) string {
	return decimal.New(cent, -2).StringFixed(2)
}
