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
	"github.com/aristath/railbird/internal/modules/sessions"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "railbird.db"),
		Name: "railbird",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zerolog.Nop()
	service := sessions.NewService(sessions.NewRepository(db.Conn(), log), log)

	router := chi.NewRouter()
	NewHandler(service, log).RegisterRoutes(router)
	return router
}

func TestCreateCloseGetFlow(t *testing.T) {
	router := setupRouter(t)

	body := bytes.NewBufferString(`{"stakes": "0.05/0.10", "buy_in": 20, "location": "home game"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/", body))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var created struct {
		Data struct {
			ID       string  `json:"id"`
			BigBlind float64 `json:"big_blind"`
		} `json:"data"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.Data.ID)
	assert.InDelta(t, 0.10, created.Data.BigBlind, 1e-9)
	assert.Contains(t, created.Metadata, "timestamp")

	closeBody := bytes.NewBufferString(`{"cash_out": 35.5, "hands_played": 180}`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/"+created.Data.ID+"/close", closeBody))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/"+created.Data.ID+"/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var fetched struct {
		Data struct {
			CashOut     float64 `json:"cash_out"`
			HandsPlayed int     `json:"hands_played"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
	assert.InDelta(t, 35.5, fetched.Data.CashOut, 1e-9)
	assert.Equal(t, 180, fetched.Data.HandsPlayed)
}

func TestCreateInvalidStakes(t *testing.T) {
	router := setupRouter(t)

	body := bytes.NewBufferString(`{"stakes": "nonsense", "buy_in": 20}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownSession(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/no-such-id/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWinRateInsufficientData(t *testing.T) {
	router := setupRouter(t)

	// No closed hands at all: the endpoint refuses to report a number.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/winrate", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSummaryEmpty(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			TotalSessions int `json:"total_sessions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 0, response.Data.TotalSessions)
}
