package store

import "errors"

var (
	// ErrReportNotFound indicates no report with the requested id exists
	// locally.
	ErrReportNotFound = errors.New("report not found")

	// ErrSyncSettingsNotFound indicates sync has never been configured on
	// this device.
	ErrSyncSettingsNotFound = errors.New("sync settings not found")
)
