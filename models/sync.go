package models

// SyncMethod selects which remote backend variant moves reports off-device.
type SyncMethod string

const (
	// SyncDisabled means no backend is configured; the engine stays idle and
	// performs no network calls.
	SyncDisabled SyncMethod = ""

	SyncGist      SyncMethod = "gist"
	SyncJSONStore SyncMethod = "jsonstore"
	SyncCustomAPI SyncMethod = "custom"
	SyncRealtime  SyncMethod = "realtime"
)

// SyncSettings is the single process-wide sync configuration record. It is
// loaded once at startup, fully replaced (never merged) whenever the user
// reconfigures, and persisted again after an adapter lazily provisions a
// remote store and injects its identifier.
type SyncSettings struct {
	// Method selects the adapter variant. Empty means sync is disabled.
	Method SyncMethod `json:"method"`

	// GistToken and GistID configure the gist backend. GistID may start
	// empty; the adapter creates a private gist on first use and writes the
	// new id back here.
	GistToken string `json:"gistToken,omitempty"`
	GistID    string `json:"gistId,omitempty"`

	// StoreEndpoint, StoreSecret and StoreBinID configure the JSON-store
	// backend. StoreBinID may start empty and is provisioned lazily.
	StoreEndpoint string `json:"storeEndpoint,omitempty"`
	StoreSecret   string `json:"storeSecret,omitempty"`
	StoreBinID    string `json:"storeBinId,omitempty"`

	// APIEndpoint and APIToken configure the custom REST backend. The token
	// is passed through as a bearer credential, never interpreted.
	APIEndpoint string `json:"apiEndpoint,omitempty"`
	APIToken    string `json:"apiToken,omitempty"`

	// RealtimeURL is the websocket endpoint of the push backend.
	RealtimeURL string `json:"realtimeUrl,omitempty"`
}

// Enabled reports whether a backend method is configured.
func (s SyncSettings) Enabled() bool {
	return s.Method != SyncDisabled
}

// SyncDocument is the wire envelope used by the whole-collection backends
// (gist, JSON-store, custom REST). Upload always replaces the entire remote
// document with the full local snapshot.
type SyncDocument struct {
	Reports    []Report `json:"reports"`
	LastUpdate int64    `json:"lastUpdate"`
}

// MergeResult is the outcome of reconciling a remote record set against the
// local one.
type MergeResult struct {
	// Records is the merged local set.
	Records []Report

	// Added holds the records that did not exist locally, in remote order.
	Added []Report

	// Refreshed holds the ids of local records that were overwritten by a
	// strictly newer remote copy and whose rendered views must be refreshed.
	Refreshed []string
}

// NewCount returns the number of genuinely new records from the last merge.
func (m MergeResult) NewCount() int {
	return len(m.Added)
}
