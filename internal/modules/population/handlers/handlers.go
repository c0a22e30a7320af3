// Package handlers provides HTTP handlers for opponent pool clustering.
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
	"github.com/aristath/railbird/internal/modules/population"
)

// OpponentSource supplies the tracked opponent pool to cluster.
type OpponentSource interface {
	All() ([]domain.OpponentRecord, error)
}

// Handler handles clustering HTTP requests
type Handler struct {
	engine    *population.ClusteringEngine
	opponents OpponentSource
	cache     *calculations.Cache
	log       zerolog.Logger
}

// NewHandler creates a new clustering handler
func NewHandler(engine *population.ClusteringEngine, opponents OpponentSource, cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		opponents: opponents,
		cache:     cache,
		log:       log.With().Str("handler", "population").Logger(),
	}
}

// RegisterRoutes registers all clustering routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/population/clusters", h.HandleClusters)
}

// HandleClusters handles GET /api/population/clusters
func (h *Handler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	opts := population.Options{}
	q := r.URL.Query()
	if raw := q.Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "k must be an integer", http.StatusBadRequest)
			return
		}
		opts.K = parsed
	}
	if raw := q.Get("seed"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "seed must be a non-negative integer", http.StatusBadRequest)
			return
		}
		opts.Seed = parsed
	}

	pool, err := h.opponents.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load opponents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var cacheKey string
	if opts.Seed != 0 {
		latest := ""
		for _, o := range pool {
			if stamp := o.UpdatedAt.Format(time.RFC3339); stamp > latest {
				latest = stamp
			}
		}
		cacheKey = calculations.Key("clusters", strconv.Itoa(len(pool)), latest,
			strconv.Itoa(opts.K), strconv.FormatUint(opts.Seed, 10))
		var cached population.Result
		if h.cache.Get(calculations.CategoryClustering, cacheKey, &cached) == nil {
			h.writeJSON(w, http.StatusOK, envelope(&cached))
			return
		}
	}

	result, err := h.engine.Cluster(pool, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(calculations.CategoryClustering, cacheKey, result, calculations.DefaultTTL); err != nil {
			h.log.Warn().Err(err).Msg("Failed to cache clustering result")
		}
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
	var invalidErr *domain.InvalidParameterError
	var insufficientErr *domain.InsufficientDataError
	var degenerateErr *domain.DegenerateInputError
	switch {
	case errors.As(err, &invalidErr):
		http.Error(w, invalidErr.Error(), http.StatusBadRequest)
	case errors.As(err, &insufficientErr):
		http.Error(w, insufficientErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &degenerateErr):
		http.Error(w, degenerateErr.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error().Err(err).Msg("Clustering request failed")
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
