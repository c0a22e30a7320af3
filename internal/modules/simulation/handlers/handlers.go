// Package handlers provides HTTP handlers for bankroll simulation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/simulation"
)

// Handler handles simulation HTTP requests
type Handler struct {
	simulator *simulation.Simulator
	cache     *calculations.Cache
	log       zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(simulator *simulation.Simulator, cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		simulator: simulator,
		cache:     cache,
		log:       log.With().Str("handler", "simulation").Logger(),
	}
}

// HandleSimulate handles POST /api/simulation/run
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var params simulation.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Only seeded runs are cacheable; seed 0 draws fresh randomness.
	var cacheKey string
	if params.Seed != 0 {
		raw, err := json.Marshal(params)
		if err == nil {
			cacheKey = calculations.Key(string(raw))
			var cached simulation.Result
			if h.cache.Get(calculations.CategorySimulation, cacheKey, &cached) == nil {
				h.writeJSON(w, http.StatusOK, envelope(&cached))
				return
			}
		}
	}

	result, err := h.simulator.Simulate(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(calculations.CategorySimulation, cacheKey, result, calculations.DefaultTTL); err != nil {
			h.log.Warn().Err(err).Msg("Failed to cache simulation result")
		}
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleKelly handles GET /api/simulation/kelly
func (h *Handler) HandleKelly(w http.ResponseWriter, r *http.Request) {
	winRate, ok := queryFloat(w, r, "winrate")
	if !ok {
		return
	}
	stdDev, ok := queryFloat(w, r, "stddev")
	if !ok {
		return
	}

	result, err := h.simulator.Kelly(winRate, stdDev)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleTimeToTarget handles GET /api/simulation/time-to-target
func (h *Handler) HandleTimeToTarget(w http.ResponseWriter, r *http.Request) {
	current, ok := queryFloat(w, r, "current")
	if !ok {
		return
	}
	target, ok := queryFloat(w, r, "target")
	if !ok {
		return
	}
	winRate, ok := queryFloat(w, r, "winrate")
	if !ok {
		return
	}

	result, err := h.simulator.TimeToTarget(current, target, winRate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

func queryFloat(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		http.Error(w, name+" must be a number", http.StatusBadRequest)
		return 0, false
	}
	return value, true
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
	h.log.Error().Err(err).Msg("Simulation request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
