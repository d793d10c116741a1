package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetbook/internal/config"
	"budgetbook/internal/kv"
)

func TestCreateBackend_Memory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte("Rent\nGroceries\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Close()

	got, err := res.Store.Get(context.Background(), kv.KeyCategories)
	if err != nil {
		t.Fatalf("Get(categories) error = %v", err)
	}
	if string(got) != `["Rent","Groceries"]` {
		t.Errorf("seeded categories = %s", got)
	}
}

func TestCreateBackend_MemoryWithPrefixSeedsScopedKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte("Rent\nPets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: dir, KeyPrefix: "alice"})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Close()

	if _, ok := res.Store.(kv.Prefixed); !ok {
		t.Fatalf("store = %T, want kv.Prefixed", res.Store)
	}
	got, err := res.Store.Get(ctx, kv.KeyCategories)
	if err != nil {
		t.Fatalf("Get(categories) through prefix error = %v", err)
	}
	if string(got) != `["Rent","Pets"]` {
		t.Errorf("seeded categories = %s", got)
	}
}

func TestCreateBackend_SQLiteWithPrefix(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path, KeyPrefix: "alice"})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}

	if _, ok := res.Store.(kv.Prefixed); !ok {
		t.Fatalf("store = %T, want kv.Prefixed", res.Store)
	}
	if err := res.Store.Set(ctx, kv.KeySelectedCurrency, []byte(`"EUR"`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Without the prefix the key is not visible.
	res, err = NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() reopen error = %v", err)
	}
	defer res.Close()

	if _, err := res.Store.Get(ctx, kv.KeySelectedCurrency); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("unprefixed Get() error = %v, want ErrNotFound", err)
	}
	got, err := res.Store.Get(ctx, "alice:"+kv.KeySelectedCurrency)
	if err != nil || string(got) != `"EUR"` {
		t.Errorf("prefixed Get() = %s, %v", got, err)
	}
}

func TestCreateBackend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "invalid type", config: Config{Type: "sheets"}, wantErr: "invalid backend type: sheets (expected one of sqlite, redis, memory)"},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "redis without address", config: Config{Type: RedisBackend}, wantErr: "Redis address is required"},
		{name: "redis unreachable", config: Config{Type: RedisBackend, RedisAddr: "127.0.0.1:1"}, wantErr: "failed to initialize Redis store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(nil).CreateBackend(context.Background(), tt.config)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CreateBackend() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend: "redis",
		RedisAddr:   "cache:6379",
		RedisDB:     4,
		KeyPrefix:   "bob",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != RedisBackend || cfg.RedisAddr != "cache:6379" || cfg.RedisDB != 4 || cfg.KeyPrefix != "bob" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("FromAppConfig() should reject unknown backends")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "sqlite,redis,memory" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}
