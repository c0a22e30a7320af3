// Package handlers provides HTTP handlers for opponent tracking.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/opponents"
)

// Handler handles opponent HTTP requests
type Handler struct {
	service *opponents.Service
	log     zerolog.Logger
}

// NewHandler creates a new opponent handler
func NewHandler(service *opponents.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "opponents").Logger(),
	}
}

// RegisterRoutes registers all opponent routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/opponents", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "name"))
		})
		r.Post("/{name}/observe", func(w http.ResponseWriter, r *http.Request) {
			h.HandleObserve(w, r, chi.URLParam(r, "name"))
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleDelete(w, r, chi.URLParam(r, "id"))
		})
	})
}

// HandleObserve handles POST /api/opponents/{name}/observe
func (h *Handler) HandleObserve(w http.ResponseWriter, r *http.Request, name string) {
	var obs opponents.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.service.Observe(name, obs)
	if err != nil {
		var invalidErr *domain.InvalidParameterError
		if errors.As(err, &invalidErr) {
			http.Error(w, invalidErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("name", name).Msg("Failed to record observation")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(record))
}

// HandleGet handles GET /api/opponents/{name}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, name string) {
	record, err := h.service.Get(name)
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("Failed to get opponent")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "opponent not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(record))
}

// HandleList handles GET /api/opponents
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list opponents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(records))
}

// HandleDelete handles DELETE /api/opponents/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func envelope(data any) map[string]any {
	return map[string]any{
		"data": data,
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
