package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.listReports)
			r.Post("/", h.createReport)
			r.Post("/{id}/confirm", h.confirmReport)
			r.Post("/{id}/status", h.setReportStatus)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/settings", h.getSyncSettings)
			r.Put("/settings", h.updateSyncSettings)
			r.Get("/status", h.syncStatus)
			r.Post("/pull", h.triggerPull)
			r.Post("/push", h.triggerPush)
		})

		r.Get("/notices", h.listNotices)
	})

	return router
}
