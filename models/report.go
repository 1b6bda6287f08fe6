package models

import "time"

// Severity classifies how bad a reported spot is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	SeverityHazard Severity = "hazard"
)

// ReportStatus is the lifecycle state of a report. Status is the only field
// (besides Confirmations) that other devices are expected to mutate.
type ReportStatus string

const (
	StatusActive   ReportStatus = "active"
	StatusCleaned  ReportStatus = "cleaned"
	StatusDisputed ReportStatus = "disputed"
)

// Report is a single user-submitted geotagged record and the unit of
// synchronization. Two records sharing an ID are the same logical report on
// every device and every backend; reconciliation must never duplicate an ID.
type Report struct {
	// ID is an opaque unique identifier assigned at creation, derived from
	// the creation time plus a random suffix. Immutable once assigned.
	ID string `json:"id"`

	// Lat and Lng are the report coordinates. Required, immutable after
	// creation.
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// Severity is one of low, medium, high, hazard.
	Severity Severity `json:"severity"`

	// LocationType is a free-form category string (e.g. "park", "roadside").
	LocationType string `json:"locationType"`

	// Notes is optional free text entered by the reporter.
	Notes string `json:"notes,omitempty"`

	// NotifyMunicipality records whether the reporter asked for the local
	// municipality to be informed. Informational only.
	NotifyMunicipality bool `json:"notifyMunicipality"`

	// Timestamp is the creation time. It is the merge tie-breaker: a remote
	// copy replaces the local one only when its Timestamp is strictly later.
	Timestamp time.Time `json:"timestamp"`

	// ReportedBy is an opaque per-device identifier. Not authenticated.
	ReportedBy string `json:"reportedBy"`

	// Status is one of active, cleaned, disputed.
	Status ReportStatus `json:"status"`

	// Confirmations counts how many users confirmed the report. Monotonically
	// non-decreasing on the originating device.
	Confirmations int `json:"confirmations"`

	// CleanupRequested is set at creation when the reporter asked for a
	// cleanup.
	CleanupRequested bool `json:"cleanupRequested"`
}

// NewerThan reports whether r's Timestamp is strictly later than other's.
// Equal timestamps favor the record already held locally.
func (r Report) NewerThan(other Report) bool {
	return r.Timestamp.After(other.Timestamp)
}
