package ledger

import (
	"errors"
	"fmt"
	"slices"

	"budgetbook/internal/core"
)

// ErrDuplicateID is returned when Add targets an ID already in the ledger.
var ErrDuplicateID = errors.New("transaction id already exists")

// Command is the closed set of ledger mutations. Only the types declared in
// this file implement it.
type Command interface {
	command()
	// Name identifies the command in logs and change events.
	Name() string
}

type (
	// Replace swaps the whole ledger, used once at load time.
	Replace struct {
		Transactions []core.Transaction
	}

	// Add appends a transaction whose ID is not yet in the ledger.
	Add struct {
		Transaction core.Transaction
	}

	// Update replaces the entry with the same ID; no-op when absent.
	Update struct {
		Transaction core.Transaction
	}

	// Delete removes the entry with ID; no-op when absent.
	Delete struct {
		ID string
	}

	// Recategorize moves every transaction filed under From to To.
	Recategorize struct {
		From string
		To   string
	}
)

func (Replace) command()      {}
func (Add) command()          {}
func (Update) command()       {}
func (Delete) command()       {}
func (Recategorize) command() {}

func (Replace) Name() string      { return "replace" }
func (Add) Name() string          { return "add" }
func (Update) Name() string       { return "update" }
func (Delete) Name() string       { return "delete" }
func (Recategorize) Name() string { return "recategorize" }

// State is an immutable snapshot of the ledger.
type State struct {
	transactions []core.Transaction
}

// NewState builds a state holding a copy of transactions.
func NewState(transactions []core.Transaction) State {
	return State{transactions: slices.Clone(transactions)}
}

// Transactions returns a copy of the ledger in insertion order.
func (s State) Transactions() []core.Transaction {
	if s.transactions == nil {
		return []core.Transaction{}
	}
	return slices.Clone(s.transactions)
}

// Len returns the number of transactions.
func (s State) Len() int {
	return len(s.transactions)
}

// Find returns the transaction with id.
func (s State) Find(id string) (core.Transaction, bool) {
	if i := s.index(id); i >= 0 {
		return s.transactions[i], true
	}
	return core.Transaction{}, false
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.transactions, func(tx core.Transaction) bool {
		return tx.ID == id
	})
}

// Reduce applies cmd to s and returns the resulting state. s is never
// modified; when the command changes nothing the returned state shares s's
// backing array. A rejected command returns s together with the reason.
func Reduce(s State, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case Replace:
		return NewState(c.Transactions), nil

	case Add:
		if s.index(c.Transaction.ID) >= 0 {
			return s, fmt.Errorf("add %q: %w", c.Transaction.ID, ErrDuplicateID)
		}
		next := make([]core.Transaction, len(s.transactions), len(s.transactions)+1)
		copy(next, s.transactions)
		return State{transactions: append(next, c.Transaction)}, nil

	case Update:
		i := s.index(c.Transaction.ID)
		if i < 0 {
			return s, nil
		}
		next := slices.Clone(s.transactions)
		next[i] = c.Transaction
		return State{transactions: next}, nil

	case Delete:
		i := s.index(c.ID)
		if i < 0 {
			return s, nil
		}
		next := make([]core.Transaction, 0, len(s.transactions)-1)
		next = append(next, s.transactions[:i]...)
		next = append(next, s.transactions[i+1:]...)
		return State{transactions: next}, nil

	case Recategorize:
		if c.From == c.To {
			return s, nil
		}
		var next []core.Transaction
		for i, tx := range s.transactions {
			if tx.Category != c.From {
				continue
			}
			if next == nil {
				next = slices.Clone(s.transactions)
			}
			next[i].Category = c.To
		}
		if next == nil {
			return s, nil
		}
		return State{transactions: next}, nil

	default:
		panic(fmt.Sprintf("ledger: unhandled command %T", cmd))
	}
}
