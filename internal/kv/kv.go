// Package kv defines the durable key-value port the persistence gateway
// writes through, plus the well-known keys of the ledger's state.
package kv

import (
	"context"
	"errors"
)

// Well-known keys, before prefixing.
const (
	KeyLedger           = "ledger"
	KeyCategories       = "categories"
	KeySelectedCurrency = "selectedCurrency"
	KeyPreferences      = "userPreferences"
)

// ErrNotFound is returned by Get when nothing was stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable byte-oriented key-value store. Set fully overwrites
// any previous value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Prefixed scopes every key of an underlying store under a namespace.
type Prefixed struct {
	Store  Store
	Prefix string
}

func (p Prefixed) key(k string) string {
	if p.Prefix == "" {
		return k
	}
	return p.Prefix + ":" + k
}

func (p Prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.key(key))
}

func (p Prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.key(key), value)
}

func (p Prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.key(key))
}
