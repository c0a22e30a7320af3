// Package handlers provides HTTP handlers for session volatility analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/volatility"
)

// SessionSource supplies the chronological session history the model fits.
type SessionSource interface {
	ListChronological() ([]domain.SessionRecord, error)
}

// Handler handles volatility HTTP requests
type Handler struct {
	model    *volatility.Model
	sessions SessionSource
	cache    *calculations.Cache
	log      zerolog.Logger
}

// NewHandler creates a new volatility handler
func NewHandler(model *volatility.Model, sessions SessionSource, cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		model:    model,
		sessions: sessions,
		cache:    cache,
		log:      log.With().Str("handler", "volatility").Logger(),
	}
}

// RegisterRoutes registers all volatility routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/volatility", h.HandleFit)
}

// HandleFit handles GET /api/volatility. The model is fit over the
// closed-session P/L series in big blinds, oldest first.
func (h *Handler) HandleFit(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListChronological()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load sessions")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var series []float64
	lastID := ""
	for _, s := range sessions {
		if s.IsLive() {
			continue
		}
		series = append(series, s.ProfitLossBB())
		lastID = s.ID
	}

	cacheKey := calculations.Key("fit", strconv.Itoa(len(series)), lastID)
	var cached volatility.Result
	if h.cache.Get(calculations.CategoryVolatility, cacheKey, &cached) == nil {
		h.writeJSON(w, http.StatusOK, envelope(&cached))
		return
	}

	result, err := h.model.Fit(series)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.cache.Set(calculations.CategoryVolatility, cacheKey, result, calculations.DefaultTTL); err != nil {
		h.log.Warn().Err(err).Msg("Failed to cache volatility fit")
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
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
	var insufficientErr *domain.InsufficientDataError
	var degenerateErr *domain.DegenerateInputError
	var fitErr *domain.FitFailedError
	switch {
	case errors.As(err, &insufficientErr):
		http.Error(w, insufficientErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &degenerateErr):
		http.Error(w, degenerateErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &fitErr):
		http.Error(w, fitErr.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error().Err(err).Msg("Volatility fit failed")
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
