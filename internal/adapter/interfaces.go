// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

// Package adapter provides the backend storage abstractions used to move
// report collections to and from a remote store.
//
// The primary abstraction is [RemoteStore], which decouples the sync engine
// from the concrete backend. Four implementations ship with the package: a
// GitHub-gist-backed document store, a JSONBin-style JSON store, a custom
// REST backend, and a websocket push backend. Push-capable backends
// additionally implement [Subscriber]; the engine discovers that capability
// with a type assertion, never by branching on backend kind.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for backend-agnostic
// error handling (e.g. [ErrAuth] for 401/403, [ErrTransport] for everything
// else that should simply be retried on the next cycle).
package adapter

import (
	"context"

	"github.com/pooler-app/pooler/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines backend-agnostic access to a remote report collection.
// Implementations are responsible for serialisation, credential header
// management, lazy provisioning of their remote document, and mapping
// transport-level errors to the sentinel values defined in this package.
type RemoteStore interface {
	// Upload replaces the entire remote collection with the given set. The
	// caller must always pass the complete local snapshot, never a delta:
	// the push model is last-writer-replaces-all. Returns a wrapped
	// [ErrTransport] or [ErrAuth] on a non-success response.
	Upload(ctx context.Context, reports []models.Report) error

	// Download returns the full remote collection as of the read. Returns a
	// wrapped [ErrTransport], [ErrAuth] or [ErrParse] on failure.
	Download(ctx context.Context) ([]models.Report, error)
}

// Subscriber is the optional capability of push-based backends. Once a
// subscription is live, periodic polling is unnecessary and the engine
// suppresses its poll timer.
type Subscriber interface {
	// Subscribe registers a continuous listener on the remote collection.
	// onChange receives the full current remote set on every change event.
	// The returned stop function tears the subscription down; it is safe to
	// call more than once.
	Subscribe(ctx context.Context, onChange func([]models.Report)) (stop func(), err error)
}

// SettingsWriter persists sync settings after an adapter lazily provisions a
// remote store and injects the new identifier (gist id, bin id) into the
// otherwise user-supplied configuration.
type SettingsWriter interface {
	SaveSyncSettings(ctx context.Context, settings models.SyncSettings) error
}
