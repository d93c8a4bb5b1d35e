package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision every balance and price is stored with.
const AmountPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundAmount rounds a to two decimal places.
func RoundAmount(a decimal.Decimal) decimal.Decimal {
	return a.Round(AmountPlaces)
}

// ParseAmount parses a user supplied amount, accepting a comma as decimal separator.
// Negative values are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, Invalidf("%q is not a valid amount", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, Invalidf("amount must not be negative")
	}
	return RoundAmount(d), nil
}

// AmountFromFloat converts a slash command number option into a stored amount.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(f)
	if d.IsNegative() {
		return decimal.Zero, Invalidf("amount must not be negative")
	}
	return RoundAmount(d), nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(a decimal.Decimal) string {
	return a.StringFixed(AmountPlaces)
}

// ApplyDiscount returns price × (1 − percent/100), rounded.
func ApplyDiscount(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return RoundAmount(price)
	}
	if percent > 100 {
		percent = 100
	}
	off := price.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
	return RoundAmount(price.Sub(off))
}
