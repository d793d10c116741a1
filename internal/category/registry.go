// Package category keeps the ordered set of user-managed category labels.
package category

import (
	"context"
	"slices"
	"strings"
	"sync"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// Persister is the slice of the persistence gateway the registry needs.
type Persister interface {
	LoadCategories(ctx context.Context) ([]string, bool)
	SaveCategories(categories []string)
}

// Registry is an ordered set of unique category names. Every mutation that
// changes the set schedules a full save while the lock is held, so saves
// reach the writer in mutation order.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	store  Persister
	logger *applog.Logger
}

// NewRegistry returns a registry seeded with the default categories.
func NewRegistry(store Persister, logger *applog.Logger) *Registry {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Registry{
		names:  core.DefaultCategories(),
		store:  store,
		logger: logger.WithComponent(applog.ComponentCategory),
	}
}

// Load replaces the defaults with the persisted list, when there is one.
// Blank and duplicate entries in the stored list are dropped.
func (r *Registry) Load(ctx context.Context) {
	stored, ok := r.store.LoadCategories(ctx)
	if !ok {
		r.logger.DebugContext(ctx, "No stored categories, keeping defaults")
		return
	}

	names := make([]string, 0, len(stored))
	for _, name := range stored {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}

	r.mu.Lock()
	r.names = names
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Categories loaded", applog.FieldCount, len(names))
}

// List returns a copy of the categories in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.names, name)
}

// Add appends name. It is a no-op, returning false, when name is blank or
// already present.
func (r *Registry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	r.mu.Lock()
	if slices.Contains(r.names, name) {
		r.mu.Unlock()
		return false
	}
	r.names = append(r.names, name)
	r.store.SaveCategories(slices.Clone(r.names))
	r.mu.Unlock()
	return true
}

// Remove deletes name from the registry. Transactions are not touched here.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	i := slices.Index(r.names, name)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.names = slices.Delete(slices.Clone(r.names), i, i+1)
	r.store.SaveCategories(slices.Clone(r.names))
	r.mu.Unlock()
	return true
}

// Rename replaces oldName with newName in place. It is rejected when newName
// is blank or already registered, or when oldName is unknown.
func (r *Registry) Rename(oldName, newName string) bool {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return false
	}

	r.mu.Lock()
	if slices.Contains(r.names, newName) {
		r.mu.Unlock()
		return false
	}
	i := slices.Index(r.names, oldName)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	names := slices.Clone(r.names)
	names[i] = newName
	r.names = names
	r.store.SaveCategories(slices.Clone(names))
	r.mu.Unlock()
	return true
}
