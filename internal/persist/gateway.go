// Package persist is the boundary between in-memory ledger state and the
// durable key-value store. Reads tolerate missing or corrupt blobs; writes
// are handed to a Writer and never report failure to the caller.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"budgetbook/internal/core"
	"budgetbook/internal/kv"
	applog "budgetbook/internal/log"
)

// Gateway loads and saves the ledger, the category list, the selected
// currency and the user preferences.
type Gateway struct {
	store  kv.Store
	writer *Writer
	logger *applog.Logger
}

func NewGateway(store kv.Store, writer *Writer, logger *applog.Logger) *Gateway {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Gateway{
		store:  store,
		writer: writer,
		logger: logger.WithComponent(applog.ComponentPersistence),
	}
}

// LoadLedger returns the saved ledger, or an empty one when nothing was saved
// or the blob cannot be decoded. Records with an unreadable amount or date
// are skipped.
func (g *Gateway) LoadLedger(ctx context.Context) []core.Transaction {
	raw, ok := g.read(ctx, kv.KeyLedger)
	if !ok {
		return []core.Transaction{}
	}

	var records []transactionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		g.corrupt(ctx, kv.KeyLedger, err)
		return []core.Transaction{}
	}

	ledger := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := fromRecord(rec)
		if err != nil {
			g.logger.WarnContext(ctx, "Skipping unreadable transaction record",
				applog.FieldKey, kv.KeyLedger,
				"index", i,
				applog.FieldTxID, rec.ID,
				applog.FieldErrorType, applog.ErrorTypeReadCorruption,
				applog.FieldError, err)
			continue
		}
		ledger = append(ledger, tx)
	}

	g.logger.InfoContext(ctx, "Ledger loaded", applog.FieldLedgerSize, len(ledger))
	return ledger
}

// SaveLedger schedules a full rewrite of the persisted ledger.
func (g *Gateway) SaveLedger(ledger []core.Transaction) {
	raw, err := encodeLedger(ledger)
	if err != nil {
		g.logger.Error("Encoding ledger failed", applog.FieldError, err)
		return
	}
	g.writer.Schedule(kv.KeyLedger, raw)
}

// LoadCategories returns the saved category list. ok is false when nothing
// usable was stored, in which case callers keep their defaults.
func (g *Gateway) LoadCategories(ctx context.Context) (categories []string, ok bool) {
	raw, found := g.read(ctx, kv.KeyCategories)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal(raw, &categories); err != nil {
		g.corrupt(ctx, kv.KeyCategories, err)
		return nil, false
	}
	return categories, categories != nil
}

// SaveCategories schedules a full rewrite of the persisted category list.
func (g *Gateway) SaveCategories(categories []string) {
	if categories == nil {
		categories = []string{}
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		g.logger.Error("Encoding categories failed", applog.FieldError, err)
		return
	}
	g.writer.Schedule(kv.KeyCategories, raw)
}

// LoadCurrency returns the raw selected currency code, if any.
func (g *Gateway) LoadCurrency(ctx context.Context) (string, bool) {
	raw, ok := g.read(ctx, kv.KeySelectedCurrency)
	if !ok {
		return "", false
	}
	code := strings.TrimSpace(string(raw))
	return code, code != ""
}

// SaveCurrency schedules a write of the selected currency code.
func (g *Gateway) SaveCurrency(code string) {
	g.writer.Schedule(kv.KeySelectedCurrency, []byte(code))
}

// LoadPreferences returns the first-run preferences, if they were saved.
func (g *Gateway) LoadPreferences(ctx context.Context) (core.Preferences, bool) {
	raw, ok := g.read(ctx, kv.KeyPreferences)
	if !ok {
		return core.Preferences{}, false
	}
	var prefs core.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		g.corrupt(ctx, kv.KeyPreferences, err)
		return core.Preferences{}, false
	}
	return prefs, true
}

// SavePreferences writes the preferences synchronously. Unlike the other
// saves its error is returned so the caller can offer a retry.
func (g *Gateway) SavePreferences(ctx context.Context, prefs core.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := g.store.Set(ctx, kv.KeyPreferences, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Flush waits for every scheduled write to complete.
func (g *Gateway) Flush(ctx context.Context) error {
	return g.writer.Flush(ctx)
}

// Close drains the write queue. Saves scheduled afterwards are dropped.
func (g *Gateway) Close(ctx context.Context) error {
	return g.writer.Close(ctx)
}

func (g *Gateway) read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		g.corrupt(ctx, key, err)
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	return raw, true
}

func (g *Gateway) corrupt(ctx context.Context, key string, err error) {
	fields := applog.NewFields().
		WithKey(key).
		WithOperation(applog.OpLoad).
		WithErrorType(applog.ErrorTypeReadCorruption).
		WithError(err)
	g.logger.WarnContext(ctx, "Stored state unreadable, starting empty", fields.ToSlice()...)
}
