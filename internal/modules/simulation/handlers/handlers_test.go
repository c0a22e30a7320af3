package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/simulation"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zerolog.Nop()
	handler := NewHandler(
		simulation.NewSimulator(log),
		calculations.NewCache(db.Conn(), log),
		log,
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

const seededRun = `{
	"starting_bankroll_bb": 2000,
	"win_rate_bb100": 5,
	"std_dev_bb100": 80,
	"trajectories": 200,
	"hands_per_trajectory": 5000,
	"seed": 42
}`

func TestHandleSimulateSeededIsCached(t *testing.T) {
	router := setupRouter(t)

	run := func() map[string]any {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/simulation/run", bytes.NewBufferString(seededRun)))
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		return response.Data
	}

	first := run()
	second := run()

	assert.Equal(t, first["risk_of_ruin"], second["risk_of_ruin"])
	assert.Equal(t, first["median_final_bb"], second["median_final_bb"])
	assert.Equal(t, float64(200), first["trajectories_run"])
}

func TestHandleSimulateInvalidParams(t *testing.T) {
	router := setupRouter(t)

	body := bytes.NewBufferString(`{"starting_bankroll_bb": -5, "win_rate_bb100": 5, "std_dev_bb100": 80}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/simulation/run", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleKelly(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/simulation/kelly?winrate=5&stddev=80", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			KellyFraction float64 `json:"kelly_fraction"`
			IsWinning     bool    `json:"is_winning"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Data.IsWinning)
	assert.InDelta(t, 0.05/64.0, response.Data.KellyFraction, 1e-12)
}

func TestHandleKellyMissingParams(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/simulation/kelly?winrate=5", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTimeToTarget(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/simulation/time-to-target?current=1000&target=2000&winrate=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			HandsNeeded int  `json:"hands_needed"`
			Reachable   bool `json:"reachable"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Data.Reachable)
	assert.Equal(t, 20000, response.Data.HandsNeeded)
}
