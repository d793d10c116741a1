// Package backend builds the kv.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"budgetbook/internal/kv"
	"budgetbook/internal/kv/memory"
	"budgetbook/internal/kv/redisstore"
	applog "budgetbook/internal/log"
	"budgetbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case RedisBackend:
		result, err = f.createRedisBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scoped applies the configured key prefix, if any.
func scoped(store kv.Store, prefix string) kv.Store {
	if prefix == "" {
		return store
	}
	return kv.Prefixed{Store: store, Prefix: prefix}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	entries, err := repo.Count(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to inspect SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		applog.FieldBackend, config.Type.String(),
		"db_path", config.SQLiteDBPath,
		applog.FieldCount, entries,
	)

	return &BackendResult{
		Store:   scoped(repo, config.KeyPrefix),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := redisstore.New(ctx, redisstore.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Redis backend",
		applog.FieldBackend, config.Type.String(),
		"addr", config.RedisAddr,
		"db", config.RedisDB,
	)

	return &BackendResult{
		Store:   scoped(store, config.KeyPrefix),
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	mem := memory.New()
	store := scoped(mem, config.KeyPrefix)
	seeded, err := memory.SeedCategories(ctx, store, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend",
		applog.FieldBackend, config.Type.String(),
		"data_directory", dataDir,
		"seeded_categories", seeded,
		applog.FieldCount, mem.Len(),
	)

	return &BackendResult{
		Store:   store,
		Cleanup: nil,
	}, nil
}
