// Package handlers provides HTTP handlers for opponent archetype tags.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/tagging"
)

// OpponentSource supplies the tracked opponents to tag.
type OpponentSource interface {
	All() ([]domain.OpponentRecord, error)
	Get(name string) (*domain.OpponentRecord, error)
}

// Handler handles tag HTTP requests
type Handler struct {
	tagger    *tagging.Tagger
	opponents OpponentSource
	log       zerolog.Logger
}

// NewHandler creates a new tag handler
func NewHandler(tagger *tagging.Tagger, opponents OpponentSource, log zerolog.Logger) *Handler {
	return &Handler{
		tagger:    tagger,
		opponents: opponents,
		log:       log.With().Str("handler", "tagging").Logger(),
	}
}

// RegisterRoutes registers all tag routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "name"))
		})
	})
}

// HandleList handles GET /api/tags
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	pool, err := h.opponents.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load opponents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(h.tagger.TagAll(pool)))
}

// HandleGet handles GET /api/tags/{name}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, name string) {
	record, err := h.opponents.Get(name)
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("Failed to get opponent")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "opponent not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(h.tagger.Tag(*record)))
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
