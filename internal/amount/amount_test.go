package amount

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "European thousands and decimals", raw: "1.234,56", want: "1234.56"},
		{name: "Plain dot decimal", raw: "1234.56", want: "1234.56"},
		{name: "Currency symbol and comma decimal", raw: "$ 45,00", want: "45"},
		{name: "Leading dot", raw: ".5", want: "0.5"},
		{name: "Trailing dot", raw: "12.", want: "12"},
		{name: "Euro with spaces", raw: " € 1 000,10 ", want: "1000.1"},
		{name: "Zero is a value", raw: "0,00", want: "0"},
		{name: "Minus sign is dropped", raw: "-15,5", want: "15.5"},
		{name: "Bolivares prefix", raw: "Bs. 2.500,75", want: "2500.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestParse_Unparsable(t *testing.T) {
	for _, raw := range []string{"", "abc", "n/a", "1.234.567", "..."} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparsable))
		})
	}
}

func TestParseNull(t *testing.T) {
	assert.False(t, ParseNull("xyz").Valid)

	zero := ParseNull("0")
	assert.True(t, zero.Valid)
	assert.True(t, zero.Decimal.IsZero())
}

func TestFormatLocal(t *testing.T) {
	tests := map[string]string{
		"1234.5":     "1.234,50",
		"0":          "0,00",
		"999":        "999,00",
		"1000000.1":  "1.000.000,10",
		"-2500.256":  "-2.500,26",
		"12.345":     "12,35",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatLocal(decimal.RequireFromString(in)), in)
	}
}
