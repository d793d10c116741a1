// Package ledger owns the in-memory list of transactions and the commands
// that change it.
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// Persister is the slice of the persistence gateway the store needs.
type Persister interface {
	LoadLedger(ctx context.Context) []core.Transaction
	SaveLedger(ledger []core.Transaction)
}

// Store serializes commands against the ledger and schedules a save of the
// full list after each one.
type Store struct {
	mu     sync.RWMutex
	state  State
	store  Persister
	logger *applog.Logger
}

// NewStore returns an empty store.
func NewStore(store Persister, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Store{
		state:  NewState(nil),
		store:  store,
		logger: logger.WithComponent(applog.ComponentLedger),
	}
}

// NewID returns a fresh transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// Load reads the persisted ledger and installs it with a Replace command.
func (s *Store) Load(ctx context.Context) error {
	return s.Dispatch(Replace{Transactions: s.store.LoadLedger(ctx)})
}

// Dispatch applies cmd. A save is scheduled whether or not the command
// changed anything; a rejected command is not saved.
func (s *Store) Dispatch(cmd Command) error {
	s.mu.Lock()
	next, err := Reduce(s.state, cmd)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("Command rejected",
			applog.FieldCommand, cmd.Name(),
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeValidation,
		)
		return err
	}
	s.state = next
	snapshot := next.Transactions()
	// Scheduling under the lock keeps saves in command order.
	s.store.SaveLedger(snapshot)
	s.mu.Unlock()

	s.logger.Debug("Command applied",
		applog.FieldCommand, cmd.Name(),
		applog.FieldLedgerSize, len(snapshot),
	)
	return nil
}

// Ledger returns a copy of the current transactions.
func (s *Store) Ledger() []core.Transaction {
	return s.Snapshot().Transactions()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Len returns the number of transactions.
func (s *Store) Len() int {
	return s.Snapshot().Len()
}
