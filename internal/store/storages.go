package store

import (
	"context"
	"fmt"

	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/migrations"
)

// Storages bundles the repositories backed by one SQLite connection.
type Storages struct {
	Reports  ReportRepository
	Settings SettingsRepository

	db *DB
}

func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect local database: %w", err)
	}

	if err := migrations.Migrate(db.DB); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("failed to run migrations")
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}

	return &Storages{
		Reports:  NewReportRepository(db, log),
		Settings: NewSettingsRepository(db, log),
		db:       db,
	}, nil
}

// Close releases the underlying database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
