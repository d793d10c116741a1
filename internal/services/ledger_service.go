// Package services wires the ledger, category registry, currency selection
// and persistence into the single API reporting views and commands go through.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budgetbook/internal/aggregate"
	"budgetbook/internal/amqp"
	"budgetbook/internal/category"
	"budgetbook/internal/core"
	"budgetbook/internal/currency"
	"budgetbook/internal/ledger"
	applog "budgetbook/internal/log"
	"budgetbook/internal/persist"
)

// EventPublisher receives a notification after every applied ledger command.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
	Close() error
}

// Deps are the collaborators of a LedgerService. Events and Closers are
// optional.
type Deps struct {
	Gateway         *persist.Gateway
	Events          EventPublisher
	Logger          *applog.Logger
	DefaultCurrency string
	// Closers run last on Close, e.g. the backend cleanup.
	Closers []func() error
}

// LedgerService owns the ledger state for one process.
type LedgerService struct {
	ledger     *ledger.Store
	categories *category.Registry
	gateway    *persist.Gateway
	events     EventPublisher
	logger     *applog.Logger
	closers    []func() error

	mu       sync.RWMutex
	currency string
	prefs    core.Preferences
	hasPrefs bool
}

func NewLedgerService(deps Deps) *LedgerService {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	code := strings.ToUpper(deps.DefaultCurrency)
	if !currency.IsSupported(code) {
		code = currency.DefaultCode
	}
	return &LedgerService{
		ledger:     ledger.NewStore(deps.Gateway, logger),
		categories: category.NewRegistry(deps.Gateway, logger),
		gateway:    deps.Gateway,
		events:     deps.Events,
		logger:     logger.WithComponent(applog.ComponentLedger),
		closers:    deps.Closers,
		currency:   code,
	}
}

// Load reads every persisted collection concurrently. Missing or corrupt
// data falls back to defaults; only cancellation is reported.
func (s *LedgerService) Load(ctx context.Context) error {
	var (
		storedCurrency string
		hasCurrency    bool
		prefs          core.Preferences
		hasPrefs       bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.ledger.Load(gctx)
	})
	g.Go(func() error {
		s.categories.Load(gctx)
		return nil
	})
	g.Go(func() error {
		storedCurrency, hasCurrency = s.gateway.LoadCurrency(gctx)
		return nil
	})
	g.Go(func() error {
		prefs, hasPrefs = s.gateway.LoadPreferences(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if hasCurrency {
		if c, ok := currency.Lookup(storedCurrency); ok {
			s.currency = c.Code
		} else {
			s.logger.WarnContext(ctx, "Ignoring unsupported stored currency", applog.FieldCurrency, storedCurrency)
		}
	}
	s.prefs, s.hasPrefs = prefs, hasPrefs
	selected := s.currency
	s.mu.Unlock()

	// Preferences saved during setup win over a stale selected currency.
	if hasPrefs && prefs.Currency != "" {
		if c, ok := currency.Lookup(prefs.Currency); ok && c.Code != selected {
			if err := s.SetCurrency(c.Code); err != nil {
				return err
			}
			selected = c.Code
		}
	}

	s.logger.InfoContext(ctx, "Ledger state loaded",
		applog.FieldLedgerSize, s.ledger.Len(),
		applog.FieldCount, len(s.categories.List()),
		applog.FieldCurrency, selected,
	)
	return nil
}

// Ledger returns a copy of the transactions in insertion order.
func (s *LedgerService) Ledger() []core.Transaction {
	return s.ledger.Ledger()
}

// Dispatch applies cmd to the ledger and publishes a change event.
func (s *LedgerService) Dispatch(ctx context.Context, cmd ledger.Command) error {
	if err := s.ledger.Dispatch(cmd); err != nil {
		return err
	}
	s.publish(ctx, cmd)
	return nil
}

// AddTransaction assigns an ID when tx has none and dispatches Add.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = ledger.NewID()
	}
	if err := s.Dispatch(ctx, ledger.Add{Transaction: tx}); err != nil {
		return core.Transaction{}, err
	}
	s.logger.InfoContext(ctx, "Transaction added", applog.NewFields().
		WithOperation(applog.OpDispatch).
		WithTransaction(tx.ID, tx.Amount.StringFixed(2), tx.Category).
		ToSlice()...)
	return tx, nil
}

func (s *LedgerService) publish(ctx context.Context, cmd ledger.Command) {
	if s.events == nil {
		return
	}
	var id string
	switch c := cmd.(type) {
	case ledger.Add:
		id = c.Transaction.ID
	case ledger.Update:
		id = c.Transaction.ID
	case ledger.Delete:
		id = c.ID
	}
	event := amqp.NewLedgerEvent(cmd.Name(), id, s.ledger.Len())
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldCommand, cmd.Name(),
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeNetwork,
		)
	}
}

// Categories returns the registered categories in order.
func (s *LedgerService) Categories() []string {
	return s.categories.List()
}

// AddCategory registers name; it reports false for blank or existing names.
func (s *LedgerService) AddCategory(name string) bool {
	return s.categories.Add(name)
}

// RemoveCategory unregisters name and moves its transactions to Other, or
// leaves them uncategorized when Other is not registered.
func (s *LedgerService) RemoveCategory(ctx context.Context, name string) bool {
	if !s.categories.Remove(name) {
		return false
	}
	target := core.CategoryOther
	if !s.categories.Contains(target) {
		target = ""
	}
	if err := s.Dispatch(ctx, ledger.Recategorize{From: name, To: target}); err != nil {
		s.logger.ErrorContext(ctx, "Recategorize after remove failed", applog.FieldCategory, name, applog.FieldError, err.Error())
	}
	s.logger.InfoContext(ctx, "Category removed", applog.FieldOperation, applog.OpRemove, applog.FieldCategory, name)
	return true
}

// RenameCategory renames oldName in place and carries its transactions over.
// Renaming to a blank or already registered name is rejected.
func (s *LedgerService) RenameCategory(ctx context.Context, oldName, newName string) bool {
	newName = strings.TrimSpace(newName)
	if !s.categories.Rename(oldName, newName) {
		return false
	}
	if err := s.Dispatch(ctx, ledger.Recategorize{From: oldName, To: newName}); err != nil {
		s.logger.ErrorContext(ctx, "Recategorize after rename failed", applog.FieldCategory, oldName, applog.FieldError, err.Error())
	}
	s.logger.InfoContext(ctx, "Category renamed", applog.FieldOperation, applog.OpRename, applog.FieldCategory, newName)
	return true
}

// ColorOf returns the display color of a category.
func (s *LedgerService) ColorOf(name string) string {
	return category.ColorOf(name)
}

// IconOf returns the display icon of a category.
func (s *LedgerService) IconOf(name string) string {
	return category.IconOf(name)
}

// SelectedCurrency returns the code amounts are displayed in.
func (s *LedgerService) SelectedCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency selects code for display. Unsupported codes leave the
// selection unchanged.
func (s *LedgerService) SetCurrency(code string) error {
	c, ok := currency.Lookup(code)
	if !ok {
		return fmt.Errorf("set currency %q: %w", code, currency.ErrUnknownCurrency)
	}
	s.mu.Lock()
	s.currency = c.Code
	s.mu.Unlock()

	s.gateway.SaveCurrency(c.Code)
	return nil
}

// Format renders amount in the given currency.
func (s *LedgerService) Format(amount decimal.Decimal, code string) string {
	return currency.Format(amount, code)
}

// FormatSelected renders amount in the selected currency.
func (s *LedgerService) FormatSelected(amount decimal.Decimal) string {
	return currency.Format(amount, s.SelectedCurrency())
}

// TotalExpenses sums the magnitudes of all expenses.
func (s *LedgerService) TotalExpenses() decimal.Decimal {
	return aggregate.TotalExpenses(s.ledger.Ledger())
}

// GroupByCategory sums expenses per category.
func (s *LedgerService) GroupByCategory() map[string]decimal.Decimal {
	return aggregate.GroupByCategory(s.ledger.Ledger())
}

// Breakdown returns the ordered expense breakdown.
func (s *LedgerService) Breakdown() aggregate.Breakdown {
	return aggregate.NewBreakdown(s.ledger.Ledger())
}

// Preferences returns the first-run preferences, if setup was completed.
func (s *LedgerService) Preferences() (core.Preferences, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs, s.hasPrefs
}

// NeedsSetup reports whether first-run setup still has to happen.
func (s *LedgerService) NeedsSetup() bool {
	_, ok := s.Preferences()
	return !ok
}

// CompleteSetup saves the first-run preferences synchronously and selects
// their currency. On error nothing changes and the caller may retry.
func (s *LedgerService) CompleteSetup(ctx context.Context, prefs core.Preferences) error {
	if prefs.Currency != "" {
		c, ok := currency.Lookup(prefs.Currency)
		if !ok {
			return fmt.Errorf("complete setup: currency %q: %w", prefs.Currency, currency.ErrUnknownCurrency)
		}
		prefs.Currency = c.Code
	}

	if err := s.gateway.SavePreferences(ctx, prefs); err != nil {
		s.logger.ErrorContext(ctx, "Saving preferences failed",
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeWriteFailure,
		)
		return err
	}

	s.mu.Lock()
	s.prefs, s.hasPrefs = prefs, true
	s.mu.Unlock()

	if prefs.Currency != "" {
		return s.SetCurrency(prefs.Currency)
	}
	return nil
}

// Flush waits until every scheduled save has been written.
func (s *LedgerService) Flush(ctx context.Context) error {
	return s.gateway.Flush(ctx)
}

// Close drains pending saves, then closes the event publisher and the
// remaining closers. All errors are reported together.
func (s *LedgerService) Close(ctx context.Context) error {
	var errs []error
	if err := s.gateway.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain writes: %w", err))
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event publisher: %w", err))
		}
	}
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.InfoContext(ctx, "Ledger service closed", applog.FieldOperation, applog.OpShutdown)
	return errors.Join(errs...)
}
