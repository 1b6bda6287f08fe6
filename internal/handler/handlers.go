package handler

import (
	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/handler/http"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, board *service.NoticeBoard, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, board, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
