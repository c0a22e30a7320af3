// Package handlers provides HTTP handlers for hand logging and hero stats.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/hands"
)

// Handler handles hand HTTP requests
type Handler struct {
	service *hands.Service
	log     zerolog.Logger
}

// NewHandler creates a new hand handler
func NewHandler(service *hands.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "hands").Logger(),
	}
}

// HandleLog handles POST /api/hands
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	var params hands.LogParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	hand, err := h.service.Log(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(hand))
}

// HandleList handles GET /api/hands
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AllHands()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(list))
}

// HandleOverallStats handles GET /api/hands/stats
func (h *Handler) HandleOverallStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.OverallStats()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(stats))
}

// HandleSessionHands handles GET /api/hands/session/{sessionID}
func (h *Handler) HandleSessionHands(w http.ResponseWriter, r *http.Request, sessionID string) {
	list, err := h.service.SessionHands(sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(list))
}

// HandleSessionStats handles GET /api/hands/session/{sessionID}/stats
func (h *Handler) HandleSessionStats(w http.ResponseWriter, r *http.Request, sessionID string) {
	stats, err := h.service.SessionStats(sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(stats))
}

// HandleShowdowns handles GET /api/hands/session/{sessionID}/showdowns
func (h *Handler) HandleShowdowns(w http.ResponseWriter, r *http.Request, sessionID string) {
	showdowns, err := h.service.Showdowns(sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(showdowns))
}

func envelope(data any) map[string]any {
	return map[string]any{
		"data": data,
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var invalidErr *domain.InvalidParameterError
	if errors.As(err, &invalidErr) {
		http.Error(w, invalidErr.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg("Hand request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
