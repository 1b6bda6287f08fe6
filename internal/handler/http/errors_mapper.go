package http

import (
	"errors"
	"net/http"

	"github.com/pooler-app/pooler/internal/adapter"
	"github.com/pooler-app/pooler/internal/service"
	"github.com/pooler-app/pooler/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidStatus: http.StatusBadRequest,

	store.ErrReportNotFound:       http.StatusNotFound,
	store.ErrSyncSettingsNotFound: http.StatusNotFound,

	adapter.ErrConfiguration: http.StatusBadRequest,
	adapter.ErrAuth:          http.StatusBadGateway,
	adapter.ErrTransport:     http.StatusBadGateway,
	adapter.ErrParse:         http.StatusBadGateway,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
