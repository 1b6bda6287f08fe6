package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/handler"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/server"
	"github.com/pooler-app/pooler/internal/service"
	"github.com/pooler-app/pooler/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("pooler")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.LogFile != "" {
		log = logger.NewFileLogger("pooler", cfg.App.LogFile)
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	board := service.NewNoticeBoard(log)
	services := service.NewServices(storages, board, cfg.Sync, log)

	// bring sync up against whatever was configured last; a fresh device
	// simply starts disabled
	settings, err := storages.Settings.GetSyncSettings(ctx)
	if err != nil && !errors.Is(err, store.ErrSyncSettingsNotFound) {
		log.Fatal().Err(err).Msg("error loading sync settings")
	}
	if err = services.Sync.Initialize(ctx, settings); err != nil {
		log.Warn().Err(err).Msg("sync stays disabled until settings are corrected")
	}

	handlers, err := handler.NewHandlers(services, board, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	services.Sync.Suspend()
	log.Info().Msg("sync engine suspended, exiting")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
