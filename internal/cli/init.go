// Package cli provides common CLI initialization utilities shared by
// cmd/ledger and cmd/ledger-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"

	"github.com/joho/godotenv"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *slog.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens and migrates the SQLite database at dbPath.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// InitAMQP connects the event publisher when an AMQP URL is configured.
// A failed connection is logged and the ledger runs without publishing.
func InitAMQP(logger *slog.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// Ledger holds the services and the resources they were built from.
type Ledger struct {
	*services.Ledger
	Repo      *storage.SQLiteRepository
	Reserved  core.ReservedCategories
	Publisher *amqp.Client

	caches *cache.Manager
}

// InitLedger builds the services over repo with an LRU budget cache and,
// when pub is non-nil, event publishing. Exits the process when the reserved
// categories are missing.
func InitLedger(ctx context.Context, logger *slog.Logger, repo *storage.SQLiteRepository, pub *amqp.Client, cfg *config.Config) *Ledger {
	reserved, err := repo.LoadReservedCategories(ctx)
	if err != nil {
		logger.Error("Failed to load reserved categories", "error", err)
		os.Exit(1)
	}

	budgets := cache.NewLRUCache[services.BudgetKey, core.Budget](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(budgets)
	manager.StartCleanup(cfg.CacheTTL)

	opts := services.Options{BudgetCache: budgets}
	if pub != nil {
		opts.Publisher = pub
	}

	return &Ledger{
		Ledger:    services.NewLedger(repo, reserved, opts),
		Repo:      repo,
		Reserved:  reserved,
		Publisher: pub,
		caches:    manager,
	}
}

// Close releases the cache cleaner, the publisher and the database.
func (l *Ledger) Close() {
	l.caches.Stop()
	if l.Publisher != nil {
		if err := l.Publisher.Close(); err != nil {
			slog.Warn("Failed to close AMQP client", "error", err)
		}
	}
	if err := l.Repo.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// the signal, cleanup runs with at most timeout to finish.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
