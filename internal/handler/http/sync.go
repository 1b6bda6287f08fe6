package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/service"
	"github.com/pooler-app/pooler/internal/store"
	"github.com/pooler-app/pooler/internal/utils"
	"github.com/pooler-app/pooler/models"
)

type syncStatusResponse struct {
	State      string     `json:"state"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

func (h *Handler) getSyncSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	settings, err := h.services.Settings.GetSyncSettings(r.Context())
	if err != nil && !errors.Is(err, store.ErrSyncSettingsNotFound) {
		log.Err(err).Str("func", "*Handler.getSyncSettings").Msg("error loading sync settings")
		http.Error(w, "error loading sync settings", statusFromError(err))
		return
	}

	// an unconfigured device reads as disabled settings
	utils.WriteJSON(w, settings, http.StatusOK)
}

// updateSyncSettings fully replaces the persisted configuration and restarts
// the engine against it: suspend first, persist, then re-initialize. A
// backend that cannot be constructed leaves sync disabled; the settings stay
// saved either way so the user can correct them.
func (h *Handler) updateSyncSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var settings models.SyncSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Err(err).Str("func", "*Handler.updateSyncSettings").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	switch settings.Method {
	case models.SyncDisabled, models.SyncGist, models.SyncJSONStore, models.SyncCustomAPI, models.SyncRealtime:
	default:
		log.Error().Str("func", "*Handler.updateSyncSettings").Str("method", string(settings.Method)).Msg("unknown sync method")
		http.Error(w, "unknown sync method", http.StatusBadRequest)
		return
	}

	h.services.Sync.Suspend()

	if err := h.services.Settings.SaveSyncSettings(ctx, settings); err != nil {
		log.Err(err).Str("func", "*Handler.updateSyncSettings").Msg("error saving sync settings")
		http.Error(w, "error saving sync settings", statusFromError(err))
		return
	}

	if err := h.services.Sync.Initialize(ctx, settings); err != nil {
		// settings are persisted; the engine stays disabled until corrected
		log.Err(err).Str("func", "*Handler.updateSyncSettings").Msg("error initializing sync backend")
	}

	h.writeSyncStatus(w)
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	h.writeSyncStatus(w)
}

func (h *Handler) triggerPull(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.services.Sync.Pull(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.triggerPull").Msg("error pulling from sync backend")
		http.Error(w, "error pulling from sync backend", statusFromError(err))
		return
	}

	h.writeSyncStatus(w)
}

func (h *Handler) triggerPush(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.services.Sync.Push(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.triggerPush").Msg("error pushing to sync backend")
		http.Error(w, "error pushing to sync backend", statusFromError(err))
		return
	}

	h.writeSyncStatus(w)
}

func (h *Handler) listNotices(w http.ResponseWriter, r *http.Request) {
	notices := h.notices.Drain()
	if notices == nil {
		notices = []service.Notice{}
	}

	utils.WriteJSON(w, notices, http.StatusOK)
}

func (h *Handler) writeSyncStatus(w http.ResponseWriter) {
	response := syncStatusResponse{State: h.services.Sync.State().String()}
	if last := h.services.Sync.LastSyncAt(); !last.IsZero() {
		response.LastSyncAt = &last
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
