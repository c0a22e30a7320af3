// Package handlers provides HTTP handlers for win rate estimation.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/winrate"
)

// HandSource supplies the chronological hand history the estimator resamples.
type HandSource interface {
	ListChronological() ([]domain.HandRecord, error)
}

// Handler handles win rate HTTP requests
type Handler struct {
	estimator *winrate.BootstrapEstimator
	hands     HandSource
	cache     *calculations.Cache
	log       zerolog.Logger
}

// NewHandler creates a new win rate handler
func NewHandler(estimator *winrate.BootstrapEstimator, hands HandSource, cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		estimator: estimator,
		hands:     hands,
		cache:     cache,
		log:       log.With().Str("handler", "winrate").Logger(),
	}
}

// RegisterRoutes registers all win rate routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/winrate", func(r chi.Router) {
		r.Get("/estimate", h.HandleEstimate)
		r.Get("/sample-size", h.HandleSampleSize)
	})
}

// HandleEstimate handles GET /api/winrate/estimate
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hands, err := h.hands.ListChronological()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load hands")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	results := make([]float64, len(hands))
	lastID := ""
	for i, hand := range hands {
		results[i] = hand.NetBB
		lastID = hand.ID
	}

	// Seeded estimates over an unchanged hand history are cacheable.
	var cacheKey string
	if opts.Seed != 0 {
		cacheKey = calculations.Key("estimate", strconv.Itoa(len(results)), lastID,
			strconv.Itoa(opts.Iterations), strconv.FormatFloat(opts.Confidence, 'g', -1, 64),
			strconv.FormatUint(opts.Seed, 10))
		var cached winrate.Result
		if h.cache.Get(calculations.CategoryWinrate, cacheKey, &cached) == nil {
			h.writeJSON(w, http.StatusOK, envelope(&cached))
			return
		}
	}

	result, err := h.estimator.Estimate(results, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(calculations.CategoryWinrate, cacheKey, result, calculations.DefaultTTL); err != nil {
			h.log.Warn().Err(err).Msg("Failed to cache win rate estimate")
		}
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleSampleSize handles GET /api/winrate/sample-size
func (h *Handler) HandleSampleSize(w http.ResponseWriter, r *http.Request) {
	stdDev, err := strconv.ParseFloat(r.URL.Query().Get("stddev"), 64)
	if err != nil {
		http.Error(w, "stddev must be a number", http.StatusBadRequest)
		return
	}
	margin, err := strconv.ParseFloat(r.URL.Query().Get("margin"), 64)
	if err != nil {
		http.Error(w, "margin must be a number", http.StatusBadRequest)
		return
	}
	confidence := winrate.DefaultConfidence
	if raw := r.URL.Query().Get("confidence"); raw != "" {
		confidence, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "confidence must be a number", http.StatusBadRequest)
			return
		}
	}

	result, err := h.estimator.RequiredSampleSize(stdDev, margin, confidence)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

func parseOptions(r *http.Request) (winrate.Options, error) {
	var opts winrate.Options
	q := r.URL.Query()

	if raw := q.Get("iterations"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("iterations must be an integer")
		}
		opts.Iterations = parsed
	}
	if raw := q.Get("confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, fmt.Errorf("confidence must be a number")
		}
		opts.Confidence = parsed
	}
	if raw := q.Get("seed"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("seed must be a non-negative integer")
		}
		opts.Seed = parsed
	}
	return opts, nil
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
		h.log.Error().Err(err).Msg("Win rate request failed")
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
