package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/modules/calculations"
)

// SystemHandlers serves health and maintenance endpoints.
type SystemHandlers struct {
	log        zerolog.Logger
	railbirdDB *database.DB
	cacheDB    *database.DB
	cache      *calculations.Cache
	startedAt  time.Time
}

// NewSystemHandlers creates the system handler set
func NewSystemHandlers(log zerolog.Logger, railbirdDB, cacheDB *database.DB, cache *calculations.Cache) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		railbirdDB: railbirdDB,
		cacheDB:    cacheDB,
		cache:      cache,
		startedAt:  time.Now(),
	}
}

// RegisterRoutes registers the system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Post("/cache/invalidate", h.HandleCacheInvalidate)
	})
}

type dbReport struct {
	Healthy bool            `json:"healthy"`
	Error   string          `json:"error,omitempty"`
	Stats   *database.Stats `json:"stats,omitempty"`
}

// HandleHealth handles GET /health and GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := map[string]any{
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}

	healthy := true
	for name, db := range map[string]*database.DB{"railbird": h.railbirdDB, "cache": h.cacheDB} {
		entry := dbReport{Healthy: true}
		if err := db.HealthCheck(r.Context()); err != nil {
			entry.Healthy = false
			entry.Error = err.Error()
			healthy = false
		} else if stats, err := db.GetStats(); err == nil {
			entry.Stats = stats
		}
		report[name] = entry
	}

	if entries, err := h.cache.Entries(); err == nil {
		report["cache_entries"] = entries
	}

	cpuPercent, memPercent := h.getSystemStats()
	report["cpu_percent"] = cpuPercent
	report["memory_percent"] = memPercent

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	report["status"] = map[bool]string{true: "ok", false: "degraded"}[healthy]

	h.writeJSON(w, status, map[string]any{
		"data": report,
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCacheInvalidate handles POST /api/system/cache/invalidate
func (h *SystemHandlers) HandleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var err error
	if category == "" {
		err = h.cache.InvalidateAll()
	} else {
		err = h.cache.InvalidateCategory(category)
	}
	if err != nil {
		h.log.Error().Err(err).Str("category", category).Msg("Cache invalidation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getSystemStats reads host CPU and RAM usage percentages. The 100ms CPU
// sampling window keeps the health endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
