package adapter

import (
	"fmt"
	"time"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

// New selects and constructs the backend variant named by settings.Method.
// Selection happens exactly once, at configuration time: switching variants
// means discarding the previous instance and calling New again. A missing
// method or credential fails with a wrapped [ErrConfiguration].
func New(settings models.SyncSettings, timeout time.Duration, writer SettingsWriter, log *logger.Logger) (RemoteStore, error) {
	switch settings.Method {
	case models.SyncGist:
		return NewGistStore(settings, timeout, writer, log)
	case models.SyncJSONStore:
		return NewJSONStore(settings, timeout, writer, log)
	case models.SyncCustomAPI:
		return NewRESTStore(settings, timeout, log)
	case models.SyncRealtime:
		return NewRealtimeStore(settings, timeout, log)
	case models.SyncDisabled:
		return nil, fmt.Errorf("%w: no sync method configured", ErrConfiguration)
	default:
		return nil, fmt.Errorf("%w: unknown sync method %q", ErrConfiguration, settings.Method)
	}
}
