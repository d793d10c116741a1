// Package currency is the static table of display currencies and the
// formatting rules used to render amounts. It never converts between
// currencies: switching the code only changes how a number is printed.
package currency

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCode is selected until the user picks another currency.
const DefaultCode = "TRY"

var ErrUnknownCurrency = errors.New("unknown currency code")

// Currency describes how amounts in one currency are displayed.
type Currency struct {
	Code   string
	Symbol string
	Label  string

	// Locale drives digit grouping and the decimal separator.
	Locale language.Tag
	// SymbolAfter places the symbol after the number, separated by a space.
	SymbolAfter bool
}

var catalog = map[string]Currency{
	"TRY": {Code: "TRY", Symbol: "₺", Label: "Turkish Lira", Locale: language.Turkish},
	"USD": {Code: "USD", Symbol: "$", Label: "US Dollar", Locale: language.AmericanEnglish},
	"EUR": {Code: "EUR", Symbol: "€", Label: "Euro", Locale: language.German, SymbolAfter: true},
	"GBP": {Code: "GBP", Symbol: "£", Label: "British Pound", Locale: language.BritishEnglish},
	"CHF": {Code: "CHF", Symbol: "CHF", Label: "Swiss Franc", Locale: language.MustParse("de-CH"), SymbolAfter: true},
	"JPY": {Code: "JPY", Symbol: "¥", Label: "Japanese Yen", Locale: language.Japanese},
}

// Lookup returns the catalog entry for code.
func Lookup(code string) (Currency, bool) {
	c, ok := catalog[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// IsSupported reports whether code is in the catalog.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// All lists the catalog with the default currency first and the rest
// ordered by code.
func All() []Currency {
	out := make([]Currency, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == DefaultCode || out[j].Code == DefaultCode {
			return out[i].Code == DefaultCode
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Format renders amount with two decimals, locale grouping and the currency
// symbol. Codes outside the catalog print with English grouping and the code
// itself as suffix.
func Format(amount decimal.Decimal, code string) string {
	c, ok := Lookup(code)
	if !ok {
		c = Currency{Code: code, Symbol: code, Locale: language.English, SymbolAfter: true}
	}
	return c.Format(amount)
}

// Format renders amount according to c's rule. The digits come from the
// exact decimal; the locale only supplies the separators.
func (c Currency) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	group, point := separators(c.Locale)
	digits := groupDigits(rounded.Abs().StringFixed(2), group, point)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	switch {
	case c.Symbol == "":
		return sign + digits
	case c.SymbolAfter:
		return sign + digits + " " + c.Symbol
	default:
		return sign + c.Symbol + digits
	}
}

// separators reads the grouping and decimal separators of tag off a
// formatted sample. Locales whose sample does not use ASCII digits fall back
// to English separators.
func separators(tag language.Tag) (group, point string) {
	sample := message.NewPrinter(tag).Sprint(number.Decimal(1234.5, number.Scale(2)))
	rest, ok := strings.CutPrefix(sample, "1")
	if !ok {
		return ",", "."
	}
	i := strings.Index(rest, "234")
	if i < 0 {
		return ",", "."
	}
	point, ok = strings.CutSuffix(rest[i+3:], "50")
	if !ok || point == "" {
		return ",", "."
	}
	return rest[:i], point
}

// groupDigits inserts group every three integer digits of a plain decimal
// string such as "1234567.80" and swaps the decimal point for point.
func groupDigits(fixed, group, point string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(group)
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteString(point)
		b.WriteString(frac)
	}
	return b.String()
}
