package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

func entry(amount, category string) core.Transaction {
	return core.Transaction{
		ID:       amount + category,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     core.NewDate(2024, 1, 1),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func TestGroupByCategoryExcludesIncome(t *testing.T) {
	ledger := []core.Transaction{
		entry("-10", "Food"),
		entry("-5", "Food"),
		entry("20", "Food"),
	}

	groups := GroupByCategory(ledger)
	require.Len(t, groups, 1)
	assertDecimal(t, "15", groups["Food"])
	assertDecimal(t, "15", TotalExpenses(ledger))
}

func TestGroupByCategoryUncategorized(t *testing.T) {
	ledger := []core.Transaction{
		entry("-3.25", ""),
		entry("-1.75", ""),
		entry("-2", "Bills"),
	}

	groups := GroupByCategory(ledger)
	assertDecimal(t, "5", groups[core.Uncategorized])
	assertDecimal(t, "2", groups["Bills"])
	_, hasBlank := groups[""]
	assert.False(t, hasBlank)
}

func TestGroupSumEqualsTotal(t *testing.T) {
	ledger := []core.Transaction{
		entry("-0.10", "Food"),
		entry("-0.20", "Transport"),
		entry("-0.30", ""),
		entry("100", "Salary"),
		entry("-12.345", "Bills"),
		entry("7.5", ""),
	}

	sum := decimal.Zero
	for _, amount := range GroupByCategory(ledger) {
		sum = sum.Add(amount)
	}
	assert.True(t, sum.Equal(TotalExpenses(ledger)), "sum %s total %s", sum, TotalExpenses(ledger))
	_, hasSalary := GroupByCategory(ledger)["Salary"]
	assert.False(t, hasSalary)
}

func TestTotalsAndBalance(t *testing.T) {
	ledger := []core.Transaction{
		entry("-12.50", "Food"),
		entry("1000", "Salary"),
		entry("-37.50", "Bills"),
	}

	assertDecimal(t, "50", TotalExpenses(ledger))
	assertDecimal(t, "1000", TotalIncome(ledger))
	assertDecimal(t, "950", Balance(ledger))
}

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name   string
		sum    string
		total  string
		want   string
		wantOK bool
	}{
		{name: "whole", sum: "15", total: "15", want: "100", wantOK: true},
		{name: "third", sum: "1", total: "3", want: "33.3", wantOK: true},
		{name: "two thirds rounds up", sum: "2", total: "3", want: "66.7", wantOK: true},
		{name: "half of cent", sum: "0.005", total: "1", want: "0.5", wantOK: true},
		{name: "zero total", sum: "0", total: "0", want: "0", wantOK: false},
		{name: "nonzero over zero", sum: "5", total: "0", want: "0", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PercentageOf(dec(tt.sum), dec(tt.total))
			assert.Equal(t, tt.wantOK, ok)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestBreakdownOrdering(t *testing.T) {
	ledger := []core.Transaction{
		entry("-10", "Food"),
		entry("-30", "Bills"),
		entry("-10", "Entertainment"),
		entry("-50", ""),
		entry("500", "Salary"),
	}

	b := NewBreakdown(ledger)
	require.False(t, b.Empty)
	assertDecimal(t, "100", b.Total)
	assertDecimal(t, "500", b.Income)

	var names []string
	for _, s := range b.Shares {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{core.Uncategorized, "Bills", "Entertainment", "Food"}, names)
	assertDecimal(t, "50", b.Shares[0].Percent)
	assertDecimal(t, "30", b.Shares[1].Percent)
	assertDecimal(t, "10", b.Shares[3].Percent)
}

func TestBreakdownEmpty(t *testing.T) {
	tests := []struct {
		name   string
		ledger []core.Transaction
	}{
		{name: "nil ledger", ledger: nil},
		{name: "income only", ledger: []core.Transaction{entry("1000", "Salary")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBreakdown(tt.ledger)
			assert.True(t, b.Empty)
			assert.Empty(t, b.Shares)
			assert.True(t, b.Total.IsZero())
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	ledger := []core.Transaction{
		{ID: "1", Amount: dec("-12.50"), Category: "Food", Date: core.NewDate(2024, 1, 1)},
		{ID: "2", Amount: dec("1000"), Category: "Salary", Date: core.NewDate(2024, 1, 2)},
	}

	assertDecimal(t, "12.50", TotalExpenses(ledger))
	groups := GroupByCategory(ledger)
	require.Len(t, groups, 1)
	assertDecimal(t, "12.50", groups["Food"])
	assert.Len(t, ledger, 2)
}
