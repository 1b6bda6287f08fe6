// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults (fill whatever is still unset)
//
// The main entry point is [GetConfig].
//
// Note that this is the process-level configuration only. The user-mutable
// sync settings (backend method, credentials, store identifiers) are a
// separate concern persisted in the local store; see models.SyncSettings.
package config
