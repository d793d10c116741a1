package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default category names seeded into a fresh registry.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryShopping      = "Shopping"
	CategoryBills         = "Bills"
	CategoryEntertainment = "Entertainment"
	CategoryOther         = "Other"

	// Uncategorized is the reporting bucket for transactions without a category.
	Uncategorized = "Uncategorized"
)

// DefaultCategories returns a fresh copy of the seed category list.
func DefaultCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
		CategoryOther,
	}
}

type (
	Date struct {
		time.Time
	}

	// Transaction is a single recorded monetary event. A negative amount is an
	// expense, a positive amount is income.
	Transaction struct {
		ID          string
		Description string
		Amount      decimal.Decimal
		Category    string // not enforced against the category registry
		Date        Date
		IsRecurring bool
	}

	// Preferences is written once during first-run setup.
	Preferences struct {
		Language string `json:"language"`
		Currency string `json:"currency"`
		Theme    string `json:"theme"`
	}
)

var (
	ErrEmptyID       = errors.New("empty transaction id")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in RFC 3339 form, the persisted representation.
func (d Date) String() string {
	return d.UTC().Format(time.RFC3339Nano)
}

// Equal reports whether both dates denote the same instant.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is income.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Equal compares transactions by value; amounts and dates compare numerically.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Description == o.Description &&
		t.Amount.Equal(o.Amount) &&
		t.Category == o.Category &&
		t.Date.Equal(o.Date) &&
		t.IsRecurring == o.IsRecurring
}

// Validate checks the fields callers are expected to guarantee before issuing
// a command. The ledger itself accepts transactions as-is.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return t.Date.Validate()
}

// EqualLedgers compares two ledgers element by element.
func EqualLedgers(a, b []Transaction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
