// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

// Settings live in a single key-value table: the sync configuration is one
// JSON-encoded row, the device identity another.
const (
	settingsKeySync     = "sync_settings"
	settingsKeyDeviceID = "device_id"
)

type settingsRepository struct {
	*DB
	logger *logger.Logger
}

func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{
		DB:     db,
		logger: logger,
	}
}

func (s *settingsRepository) GetSyncSettings(ctx context.Context) (models.SyncSettings, error) {
	log := logger.FromContext(ctx)

	raw, err := s.getValue(ctx, settingsKeySync)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncSettings{}, ErrSyncSettingsNotFound
		}
		log.Err(err).
			Str("func", "settingsRepository.GetSyncSettings").
			Msg("failed to load sync settings row")
		return models.SyncSettings{}, fmt.Errorf("failed to load sync settings: %w", err)
	}

	var settings models.SyncSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Err(err).
			Str("func", "settingsRepository.GetSyncSettings").
			Msg("failed to decode stored sync settings")
		return models.SyncSettings{}, fmt.Errorf("failed to decode sync settings: %w", err)
	}

	return settings, nil
}

func (s *settingsRepository) SaveSyncSettings(ctx context.Context, settings models.SyncSettings) error {
	log := logger.FromContext(ctx)

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode sync settings: %w", err)
	}

	if err := s.setValue(ctx, settingsKeySync, string(raw)); err != nil {
		log.Err(err).
			Str("func", "settingsRepository.SaveSyncSettings").
			Msg("failed to persist sync settings")
		return fmt.Errorf("failed to save sync settings: %w", err)
	}

	return nil
}

func (s *settingsRepository) DeviceID(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	id, err := s.getValue(ctx, settingsKeyDeviceID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).
			Str("func", "settingsRepository.DeviceID").
			Msg("failed to load device id")
		return "", fmt.Errorf("failed to load device id: %w", err)
	}

	// first run on this device
	id = uuid.NewString()
	if err := s.setValue(ctx, settingsKeyDeviceID, id); err != nil {
		log.Err(err).
			Str("func", "settingsRepository.DeviceID").
			Msg("failed to persist minted device id")
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	log.Debug().Str("func", "settingsRepository.DeviceID").Str("device_id", id).Msg("minted new device id")

	return id, nil
}

func (s *settingsRepository) getValue(ctx context.Context, key string) (string, error) {
	query, args, err := sq.Select("value").
		From("settings").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build settings query: %w", err)
	}

	var value string
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return "", err
	}

	return value, nil
}

func (s *settingsRepository) setValue(ctx context.Context, key string, value string) error {
	query, args, err := sq.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build settings upsert: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, query, args...)
	return err
}
