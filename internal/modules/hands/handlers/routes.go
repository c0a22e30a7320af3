package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all hand routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hands", func(r chi.Router) {
		r.Post("/", h.HandleLog)
		r.Get("/", h.HandleList)
		r.Get("/stats", h.HandleOverallStats)

		r.Route("/session/{sessionID}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleSessionHands(w, r, chi.URLParam(r, "sessionID"))
			})
			r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
				h.HandleSessionStats(w, r, chi.URLParam(r, "sessionID"))
			})
			r.Get("/showdowns", func(w http.ResponseWriter, r *http.Request) {
				h.HandleShowdowns(w, r, chi.URLParam(r, "sessionID"))
			})
		})
	})
}
