// Package money converts between decimal amounts on the wire and integer minor units.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid_amount")

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit decimal (10.005) into minor units, rounding half up.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinor converts minor units back to a two-place decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseMinor parses a decimal string such as "19.99" into minor units.
func ParseMinor(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	return ToMinor(d), nil
}

// Format renders minor units as "12.34".
func Format(minor int64) string {
	return FromMinor(minor).StringFixed(2)
}

// FormatWithSymbol renders minor units with a currency symbol, e.g. "$12.34".
func FormatWithSymbol(minor int64, currency string) string {
	symbol := ""
	switch strings.ToLower(strings.TrimSpace(currency)) {
	case "usd", "cad", "aud":
		symbol = "$"
	case "eur":
		symbol = "€"
	case "gbp":
		symbol = "£"
	default:
		return Format(minor) + " " + strings.ToUpper(currency)
	}
	if minor < 0 {
		return "-" + symbol + Format(-minor)
	}
	return symbol + Format(minor)
}

// Percent returns round-half-up(amount * pct / 100).
func Percent(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(hundred).Round(0).IntPart()
}

// DivideRound returns round-half-up(total / qty). qty must be positive.
func DivideRound(total, qty int64) int64 {
	if qty <= 0 {
		return total
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(qty)).Round(0).IntPart()
}
