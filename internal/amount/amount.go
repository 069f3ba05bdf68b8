// Package amount converts locale formatted amount text to decimals and back.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparsable is returned when text cannot be read as an amount.
// A zero amount is a valid result and never reported with this error.
var ErrUnparsable = errors.New("unparsable amount")

var currencySymbols = []string{"$", "€", "£", "¥", "₹", "Bs.S", "Bs.", "Bs", "USD", "EUR", "VES"}

// Parse normalizes amount text such as "1.234,56", "$ 45,00" or ".5".
//
// When both separators appear the dot groups thousands and the comma marks
// decimals; a lone comma is a decimal separator. Anything that is not a digit
// or a dot is dropped afterwards, so the result is never negative.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Join(strings.Fields(s), "")

	hasComma := strings.Contains(s, ",")
	switch {
	case hasComma && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	if s == "" || strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsable, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsable, raw)
	}
	return d, nil
}

// ParseNull is Parse for optional values: Valid is false when raw is unparsable.
func ParseNull(raw string) decimal.NullDecimal {
	d, err := Parse(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// FormatLocal renders d with two decimals, "." for thousands and "," for
// decimals, e.g. 1234.5 -> "1.234,50".
func FormatLocal(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
