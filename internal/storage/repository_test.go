package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetbook/internal/kv"
)

func newTestRepository(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "budgetbook.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteRepository_SetGetOverwrite(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, kv.KeyLedger); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty table, got %v", err)
	}

	if err := repo.Set(ctx, kv.KeyLedger, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, kv.KeyLedger, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := repo.Get(ctx, kv.KeyLedger)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 entry, got %d (err=%v)", n, err)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Set(ctx, kv.KeySelectedCurrency, []byte("EUR")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Delete(ctx, kv.KeySelectedCurrency); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, kv.KeySelectedCurrency); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting a missing key is not an error
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	repo, path := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Set(ctx, kv.KeyCategories, []byte(`["Food"]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migrations must be idempotent on an existing database
	reopened, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, kv.KeyCategories)
	if err != nil || string(got) != `["Food"]` {
		t.Fatalf("unexpected value after reopen: %q err=%v", got, err)
	}
}

func TestRunMigrations_ReportsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	for i := 0; i < 2; i++ {
		version, err := RunMigrations(path)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if version != 1 {
			t.Errorf("run %d: version = %d, want 1", i, version)
		}
	}
}
