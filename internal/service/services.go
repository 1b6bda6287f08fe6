package service

import (
	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/store"
)

// Services aggregates everything the host application consumes. Settings is
// exposed so the HTTP surface can persist a new sync configuration before
// handing it to the engine.
type Services struct {
	Reports  ReportService
	Sync     SyncEngine
	Settings store.SettingsRepository
}

// NewServices wires the sync engine and the report operations over the local
// storages and the host-provided notifier.
func NewServices(storages *store.Storages, notifier Notifier, syncCfg config.Sync, log *logger.Logger) *Services {
	engine := NewSyncEngine(storages.Reports, storages.Settings, notifier, syncCfg, log)

	return &Services{
		Reports:  NewReportService(storages.Reports, storages.Settings, engine, log),
		Sync:     engine,
		Settings: storages.Settings,
	}
}
