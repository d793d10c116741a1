package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-01", NewDate(2024, 1, 1), true},
		{"2024-01-02T00:00:00Z", NewDate(2024, 1, 2), true},
		{" 2024-12-31 ", NewDate(2024, 12, 31), true},
		{"2024-13-01", Date{}, false},
		{"yesterday", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateStringRoundTrip(t *testing.T) {
	d := Date{Time: time.Date(2024, 3, 15, 18, 30, 5, 0, time.FixedZone("CET", 3600))}
	back, err := ParseDate(d.String())
	if err != nil {
		t.Fatalf("parse %q: %v", d.String(), err)
	}
	if !back.Equal(d) {
		t.Fatalf("expected %v, got %v", d, back)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "1",
		Amount:   decimal.RequireFromString("-12.50"),
		Category: CategoryFood,
		Date:     NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Amount: decimal.NewFromInt(1), Date: NewDate(2024, 1, 1)},
		{ID: "1", Amount: decimal.Zero, Date: NewDate(2024, 1, 1)},
		{ID: "1", Amount: decimal.NewFromInt(1)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionEqual(t *testing.T) {
	a := Transaction{ID: "1", Amount: decimal.RequireFromString("-12.5"), Date: NewDate(2024, 1, 1)}
	b := Transaction{ID: "1", Amount: decimal.RequireFromString("-12.50"), Date: NewDate(2024, 1, 1)}
	if !a.Equal(b) {
		t.Fatalf("expected numerically equal amounts to compare equal")
	}
	b.IsRecurring = true
	if a.Equal(b) {
		t.Fatalf("expected recurring flag to matter")
	}
	if !EqualLedgers(nil, []Transaction{}) {
		t.Fatalf("nil and empty ledgers should be equal")
	}
}

func TestExpenseIncomeSign(t *testing.T) {
	if !(Transaction{Amount: Expense(decimal.NewFromInt(5))}).IsExpense() {
		t.Fatalf("expected expense")
	}
	if !(Transaction{Amount: Income(decimal.NewFromInt(-5))}).IsIncome() {
		t.Fatalf("expected income")
	}
	if len(DefaultCategories()) != 6 {
		t.Fatalf("expected six default categories")
	}
}
