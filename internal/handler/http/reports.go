package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/utils"
	"github.com/pooler-app/pooler/models"
)

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	reports, err := h.services.Reports.GetAllReports(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listReports").Msg("error loading reports")
		http.Error(w, "error loading reports", statusFromError(err))
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}

	utils.WriteJSON(w, reports, http.StatusOK)
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var draft models.Report
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Err(err).Str("func", "*Handler.createReport").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	report, err := h.services.Reports.CreateReport(r.Context(), draft)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createReport").Msg("error creating report")
		http.Error(w, "error creating report", statusFromError(err))
		return
	}

	utils.WriteJSON(w, report, http.StatusCreated)
}

func (h *Handler) confirmReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	report, err := h.services.Reports.ConfirmReport(r.Context(), id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.confirmReport").Str("id", id).Msg("error confirming report")
		http.Error(w, "error confirming report", statusFromError(err))
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}

func (h *Handler) setReportStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	var body struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.setReportStatus").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	report, err := h.services.Reports.SetReportStatus(r.Context(), id, body.Status)
	if err != nil {
		log.Err(err).Str("func", "*Handler.setReportStatus").Str("id", id).Msg("error updating report status")
		http.Error(w, "error updating report status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}
