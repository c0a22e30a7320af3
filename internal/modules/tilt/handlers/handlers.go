// Package handlers provides HTTP handlers for tilt detection.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/tilt"
)

// DefaultRecentHands bounds the lookback of the recent-hands score.
const DefaultRecentHands = 200

// HandSource supplies the hand windows the detector scores.
type HandSource interface {
	ListBySession(sessionID string) ([]domain.HandRecord, error)
	ListRecent(limit int) ([]domain.HandRecord, error)
}

// Handler handles tilt HTTP requests
type Handler struct {
	detector *tilt.Detector
	hands    HandSource
	log      zerolog.Logger
}

// NewHandler creates a new tilt handler
func NewHandler(detector *tilt.Detector, hands HandSource, log zerolog.Logger) *Handler {
	return &Handler{
		detector: detector,
		hands:    hands,
		log:      log.With().Str("handler", "tilt").Logger(),
	}
}

// RegisterRoutes registers all tilt routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tilt", func(r chi.Router) {
		r.Get("/recent", h.HandleRecent)
		r.Get("/session/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSession(w, r, chi.URLParam(r, "sessionID"))
		})
	})
}

// HandleSession handles GET /api/tilt/session/{sessionID}
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	hands, err := h.hands.ListBySession(sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load hands")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.score(w, hands)
}

// HandleRecent handles GET /api/tilt/recent
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRecentHands
	if raw := r.URL.Query().Get("hands"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "hands must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	hands, err := h.hands.ListRecent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load recent hands")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.score(w, hands)
}

func (h *Handler) score(w http.ResponseWriter, hands []domain.HandRecord) {
	score, err := h.detector.Score(hands)
	if err != nil {
		h.log.Error().Err(err).Msg("Tilt scoring failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(score))
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
