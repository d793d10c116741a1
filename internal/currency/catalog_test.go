package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{"usd grouping", "1234.5", "USD", "$1,234.50"},
		{"usd negative", "-12.5", "USD", "-$12.50"},
		{"usd rounds half away from zero", "0.125", "USD", "$0.13"},
		{"usd zero", "0", "USD", "$0.00"},
		{"eur suffix and comma decimals", "1234.5", "EUR", "1.234,50 €"},
		{"gbp", "1000000", "GBP", "£1,000,000.00"},
		{"lowercase code", "1", "usd", "$1.00"},
		{"unknown code", "1234.5", "XYZ", "1,234.50 XYZ"},
		{"usd beyond float precision", "12345678901234567.89", "USD", "$12,345,678,901,234,567.89"},
		{"eur beyond float precision", "-98765432109876543.21", "EUR", "-98.765.432.109.876.543,21 €"},
		{"usd three digits", "999.99", "USD", "$999.99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tc.amount), tc.code)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatNeverRescales(t *testing.T) {
	amount := decimal.RequireFromString("42")
	assert.Equal(t, "$42.00", Format(amount, "USD"))
	assert.Equal(t, "£42.00", Format(amount, "GBP"))
	assert.True(t, amount.Equal(decimal.NewFromInt(42)))
}

func TestLookupAndAll(t *testing.T) {
	c, ok := Lookup("eur")
	assert.True(t, ok)
	assert.Equal(t, "€", c.Symbol)
	assert.False(t, IsSupported("XYZ"))
	assert.True(t, IsSupported(DefaultCode))

	all := All()
	assert.Len(t, all, 6)
	assert.Equal(t, DefaultCode, all[0].Code)
	for i := 2; i < len(all); i++ {
		assert.Less(t, all[i-1].Code, all[i].Code)
	}
}

func TestGroupDigits(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0.00", "0.00"},
		{"12.30", "12.30"},
		{"123.45", "123.45"},
		{"1234.50", "1,234.50"},
		{"123456.00", "123,456.00"},
		{"1234567", "1,234,567"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, groupDigits(tc.in, ",", "."), tc.in)
	}
}
