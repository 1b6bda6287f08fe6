// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

// Package store provides the durable local state of the application: the
// report collection and the user-mutable sync settings, both surviving
// process restarts in a local SQLite database.
package store

import (
	"context"

	"github.com/pooler-app/pooler/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ReportRepository is the local record collection the sync subsystem
// reconciles against. SaveReports is an upsert covering both append and
// update-in-place, so persisting a merged set is a single batch call.
type ReportRepository interface {
	// GetAllReports returns the full local collection.
	GetAllReports(ctx context.Context) ([]models.Report, error)

	// GetReport returns the report with the given id, or a wrapped
	// [ErrReportNotFound].
	GetReport(ctx context.Context, id string) (models.Report, error)

	// SaveReports inserts or replaces the given reports by id.
	SaveReports(ctx context.Context, reports ...models.Report) error
}

// SettingsRepository persists the single sync configuration record and the
// per-device identity.
type SettingsRepository interface {
	// GetSyncSettings loads the persisted configuration. A wrapped
	// [ErrSyncSettingsNotFound] means sync has never been configured and
	// must start disabled.
	GetSyncSettings(ctx context.Context) (models.SyncSettings, error)

	// SaveSyncSettings fully replaces the persisted configuration. Also
	// called by adapters after lazily provisioning a remote store.
	SaveSyncSettings(ctx context.Context, settings models.SyncSettings) error

	// DeviceID returns the opaque per-device identifier, minting and
	// persisting one on first use.
	DeviceID(ctx context.Context) (string, error)
}
