package persist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
)

// transactionRecord is the persisted shape of a transaction.
type transactionRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount,omitempty"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
}

func toRecord(tx core.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      json.RawMessage(tx.Amount.String()),
		Category:    tx.Category,
		IsRecurring: tx.IsRecurring,
	}
	if !tx.Date.IsZero() {
		rec.Date = tx.Date.String()
	}
	return rec
}

func fromRecord(rec transactionRecord) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          rec.ID,
		Description: rec.Description,
		Amount:      decimal.Zero,
		Category:    rec.Category,
		IsRecurring: rec.IsRecurring,
	}

	amount, err := parseAmount(rec.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = amount

	if rec.Date != "" {
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse date %q: %w", rec.Date, err)
		}
		tx.Date = date
	}

	return tx, nil
}

// parseAmount accepts a JSON number or a numeric string. A missing or null
// amount decodes as zero.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %s: %w", raw, err)
		}
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %s: %w", raw, err)
	}
	return amount, nil
}

func encodeLedger(ledger []core.Transaction) ([]byte, error) {
	records := make([]transactionRecord, len(ledger))
	for i, tx := range ledger {
		records[i] = toRecord(tx)
	}
	return json.Marshal(records)
}
