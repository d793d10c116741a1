// Package aggregate computes reporting figures over a ledger snapshot.
// Every function is pure and runs in a single pass.
package aggregate

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
)

var hundred = decimal.NewFromInt(100)

// TotalExpenses sums the magnitudes of all expense entries.
func TotalExpenses(ledger []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range ledger {
		if tx.IsExpense() {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total
}

// TotalIncome sums all income entries.
func TotalIncome(ledger []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range ledger {
		if tx.IsIncome() {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Balance is the signed sum of the whole ledger.
func Balance(ledger []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range ledger {
		total = total.Add(tx.Amount)
	}
	return total
}

// GroupByCategory maps each category to the summed magnitude of its expenses.
// Entries with an empty category are reported under core.Uncategorized.
// Income never appears in the result.
func GroupByCategory(ledger []core.Transaction) map[string]decimal.Decimal {
	groups := make(map[string]decimal.Decimal)
	for _, tx := range ledger {
		if !tx.IsExpense() {
			continue
		}
		name := tx.Category
		if name == "" {
			name = core.Uncategorized
		}
		groups[name] = groups[name].Add(tx.Amount.Abs())
	}
	return groups
}

// PercentageOf returns sum as a percentage of total rounded to one decimal.
// ok is false when total is zero and there is nothing to compare against.
func PercentageOf(sum, total decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if total.IsZero() {
		return decimal.Zero, false
	}
	return sum.Mul(hundred).DivRound(total, 1), true
}

// Share is one category's slice of the expense total.
type Share struct {
	core.CategoryAmount
	Percent decimal.Decimal
}

// Breakdown is the report view of a ledger's expenses.
type Breakdown struct {
	Total  decimal.Decimal
	Income decimal.Decimal
	Shares []Share
	// Empty is set when there are no expenses; Shares is then empty and no
	// percentage is meaningful.
	Empty bool
}

// NewBreakdown builds the expense breakdown of ledger. Shares are ordered by
// amount, largest first, with ties broken by name.
func NewBreakdown(ledger []core.Transaction) Breakdown {
	b := Breakdown{
		Total:  TotalExpenses(ledger),
		Income: TotalIncome(ledger),
		Shares: []Share{},
	}
	if b.Total.IsZero() {
		b.Empty = true
		return b
	}

	for name, amount := range GroupByCategory(ledger) {
		pct, _ := PercentageOf(amount, b.Total)
		b.Shares = append(b.Shares, Share{
			CategoryAmount: core.CategoryAmount{Name: name, Amount: amount},
			Percent:        pct,
		})
	}
	slices.SortFunc(b.Shares, func(a, c Share) int {
		if n := c.Amount.Cmp(a.Amount); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, c.Name)
	})
	return b
}
