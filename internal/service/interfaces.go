// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

// Package service contains the sync engine, the merge reconciler, and the
// report operations that sit between the HTTP surface and the local store.
package service

import (
	"context"
	"time"

	"github.com/pooler-app/pooler/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Notifier is the UI collaborator consumed by the sync subsystem. The host
// application decides how notices reach the user (toasts in the original
// app); the engine only guarantees a single aggregate new-report notice per
// merge cycle and one error notice per failed cycle.
type Notifier interface {
	// NotifyNewReports announces that count genuinely new reports arrived in
	// one merge cycle.
	NotifyNewReports(count int)

	// NotifyError surfaces a dismissable error message.
	NotifyError(message string)

	// RenderReport asks the view to render a newly arrived active report.
	RenderReport(report models.Report)

	// RefreshReportView asks the view to refresh whatever it has rendered
	// for the given report id after a remote overwrite.
	RefreshReportView(id string)
}

// Reconciler merges a remote record set into the local one. Implementations
// must be pure: no I/O, no mutation of the inputs.
type Reconciler interface {
	// Reconcile applies the conflict-resolution policy and returns the
	// merged set together with what changed.
	Reconcile(local, remote []models.Report) models.MergeResult
}

// SyncEngine owns the active backend adapter and drives periodic pull,
// immediate push-on-write, and merge delegation.
//
// Lifecycle: Disabled -> Initializing -> Enabled <-> Suspended. Only a
// configuration error at initialization keeps the engine Disabled; transient
// upload/download failures are surfaced and retried on the next cycle
// without any state change.
type SyncEngine interface {
	// Initialize replaces the active adapter with one built from settings.
	// It always suspends first, so two adapters never run concurrently. A
	// disabled method leaves the engine Disabled without error.
	Initialize(ctx context.Context, settings models.SyncSettings) error

	// Suspend stops the poll timer and tears down any subscription without
	// discarding configuration. Safe to call repeatedly and when nothing is
	// running.
	Suspend()

	// Resume re-enters Enabled from Suspended without re-provisioning.
	// Calling it when not Suspended is a no-op; it never creates a second
	// timer or subscription.
	Resume(ctx context.Context) error

	// Push uploads the complete local snapshot (never a delta) to the
	// active backend. No-op unless Enabled. Failures are reported and
	// returned, but never change engine state.
	Push(ctx context.Context) error

	// Pull runs one download-and-merge cycle. No-op unless Enabled.
	// Failures are reported and returned, but never change engine state.
	Pull(ctx context.Context) error

	// State returns the current lifecycle state.
	State() EngineState

	// LastSyncAt returns the time of the last successful pull, or the zero
	// time if none has happened yet.
	LastSyncAt() time.Time
}

// SyncJob is the background worker that calls Pull on a fixed cadence for
// pull-based backends.
type SyncJob interface {
	// Start launches the background poll goroutine. It polls every
	// interval, defaulting to 30 seconds if interval is zero or negative.
	// Any previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated. Safe to call when the job is not running.
	Stop()
}

// ReportService covers the host-side report operations: creation,
// confirmation, and status changes. Every local mutation triggers a
// full-snapshot push.
type ReportService interface {
	// CreateReport mints an id and timestamp for draft, appends it to the
	// local store, and pushes the full local set to the backend.
	CreateReport(ctx context.Context, draft models.Report) (models.Report, error)

	// GetAllReports returns the full local collection.
	GetAllReports(ctx context.Context) ([]models.Report, error)

	// ConfirmReport increments the confirmation counter of the report.
	ConfirmReport(ctx context.Context, id string) (models.Report, error)

	// SetReportStatus updates the lifecycle status of the report.
	SetReportStatus(ctx context.Context, id string, status models.ReportStatus) (models.Report, error)
}
