package http

import (
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/service"
)

type Handler struct {
	services *service.Services
	notices  *service.NoticeBoard

	logger *logger.Logger
}

func NewHandler(services *service.Services, notices *service.NoticeBoard, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		notices:  notices,
		logger:   logger,
	}
}
