// Package cli provides the initialization steps shared by the budgetbook
// subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbook/internal/amqp"
	"budgetbook/internal/backend"
	"budgetbook/internal/config"
	applog "budgetbook/internal/log"
	"budgetbook/internal/persist"
	"budgetbook/internal/services"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. Records go to stderr so command output on stdout
// stays clean.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Output = os.Stderr

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *applog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
		)
		return nil, err
	}
	return cfg, nil
}

// OpenEvents connects the ledger event client. It returns nil without error
// when AMQP is not configured.
func OpenEvents(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		return nil, nil
	}
	return amqp.NewClient(ctx, amqp.Config{
		URL:        cfg.AMQPURL,
		Exchange:   cfg.AMQPExchange,
		RoutingKey: cfg.AMQPRoutingKey,
		Queue:      cfg.AMQPQueue,
	}, logger)
}

// OpenService builds the configured backend and a LedgerService on top of
// it, then loads the persisted state. An unreachable broker only disables
// change events.
func OpenService(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*services.LedgerService, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	writer := persist.NewWriter(result.Store, logger, cfg.PersistWriteTimeout)
	deps := services.Deps{
		Gateway:         persist.NewGateway(result.Store, writer, logger),
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
		Closers:         []func() error{result.Close},
	}

	events, err := OpenEvents(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without ledger events",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeNetwork,
		)
	} else if events != nil {
		deps.Events = events
		logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	}

	svc := services.NewLedgerService(deps)
	if err := svc.Load(ctx); err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.PersistWriteTimeout)
		defer cancel()
		_ = svc.Close(closeCtx)
		return nil, err
	}
	return svc, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has run.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
