package database

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/khaledelhady44/The-boy-who-lived/internal/config"
)

// NewClient opens the embedded badger store.
func NewClient(cfg config.DatabaseConfig, logger *slog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(&badgerSlogAdapter{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("database opened",
		"path", cfg.Path,
		"in_memory", cfg.InMemory,
	)

	return db, nil
}

// Health runs a no-op read transaction to verify the store is usable.
func Health(db *badger.DB) error {
	if db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return db.View(func(txn *badger.Txn) error { return nil })
}

// Close closes the store.
func Close(db *badger.DB, logger *slog.Logger) error {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return err
	}
	logger.Info("database closed")
	return nil
}

// badgerSlogAdapter adapts slog to badger's Logger interface.
type badgerSlogAdapter struct {
	logger *slog.Logger
}

func (a *badgerSlogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *badgerSlogAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *badgerSlogAdapter) Infof(format string, args ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *badgerSlogAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
