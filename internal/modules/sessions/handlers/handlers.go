// Package handlers provides HTTP handlers for session operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/sessions"
)

// Handler handles session HTTP requests
type Handler struct {
	service *sessions.Service
	log     zerolog.Logger
}

// NewHandler creates a new session handler
func NewHandler(service *sessions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "sessions").Logger(),
	}
}

// HandleCreate handles POST /api/sessions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var params sessions.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.service.Create(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(session))
}

type closeRequest struct {
	CashOut     float64 `json:"cash_out"`
	HandsPlayed int     `json:"hands_played"`
}

// HandleClose handles POST /api/sessions/{id}/close
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request, id string) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.service.Close(id, req.CashOut, req.HandsPlayed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(session))
}

// HandleGet handles GET /api/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.service.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if session == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(session))
}

// HandleList handles GET /api/sessions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.service.Recent(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(list))
}

// HandleDelete handles DELETE /api/sessions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSummary handles GET /api/sessions/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(summary))
}

// HandleWinRate handles GET /api/sessions/winrate
func (h *Handler) HandleWinRate(w http.ResponseWriter, r *http.Request) {
	winRate, err := h.service.WinRate()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]float64{"win_rate_bb100": winRate}))
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
	var insufficientErr *domain.InsufficientDataError
	switch {
	case errors.As(err, &invalidErr):
		http.Error(w, invalidErr.Error(), http.StatusBadRequest)
	case errors.As(err, &insufficientErr):
		http.Error(w, insufficientErr.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error().Err(err).Msg("Session request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
