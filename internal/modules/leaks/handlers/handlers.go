// Package handlers provides the HTTP handler for leak analysis. The
// handler assembles the full record view the finder needs: sessions,
// hands, archetype tags, and per-session tilt scores.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/leaks"
	"github.com/aristath/railbird/internal/modules/tagging"
	"github.com/aristath/railbird/internal/modules/tilt"
)

// SessionSource supplies the session history.
type SessionSource interface {
	ListChronological() ([]domain.SessionRecord, error)
}

// HandSource supplies the full hand history.
type HandSource interface {
	ListChronological() ([]domain.HandRecord, error)
}

// OpponentSource supplies the tracked opponent pool.
type OpponentSource interface {
	All() ([]domain.OpponentRecord, error)
}

// Handler handles leak analysis HTTP requests
type Handler struct {
	finder    *leaks.Finder
	detector  *tilt.Detector
	tagger    *tagging.Tagger
	sessions  SessionSource
	hands     HandSource
	opponents OpponentSource
	log       zerolog.Logger
}

// NewHandler creates a new leak handler
func NewHandler(
	finder *leaks.Finder,
	detector *tilt.Detector,
	tagger *tagging.Tagger,
	sessions SessionSource,
	hands HandSource,
	opponents OpponentSource,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		finder:    finder,
		detector:  detector,
		tagger:    tagger,
		sessions:  sessions,
		hands:     hands,
		opponents: opponents,
		log:       log.With().Str("handler", "leaks").Logger(),
	}
}

// RegisterRoutes registers all leak routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/leaks", h.HandleAnalyze)
}

// HandleAnalyze handles GET /api/leaks
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListChronological()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load sessions")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	hands, err := h.hands.ListChronological()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load hands")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pool, err := h.opponents.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load opponents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	tiltScores, err := h.scoreSessions(hands)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to score sessions for tilt")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	items := []leaks.LeakItem{}
	for item := range h.finder.Analyze(sessions, hands, h.tagger.TagAll(pool), tiltScores) {
		items = append(items, item)
	}

	h.writeJSON(w, http.StatusOK, envelope(items))
}

// scoreSessions computes a tilt score per session from the grouped hand
// history. Sessions with too few hands score zero and never trigger the
// tilt burn rule.
func (h *Handler) scoreSessions(hands []domain.HandRecord) (map[string]float64, error) {
	bySession := make(map[string][]domain.HandRecord)
	for _, hand := range hands {
		bySession[hand.SessionID] = append(bySession[hand.SessionID], hand)
	}

	scores := make(map[string]float64, len(bySession))
	for sessionID, sessionHands := range bySession {
		score, err := h.detector.Score(sessionHands)
		if err != nil {
			return nil, err
		}
		scores[sessionID] = score.Score
	}
	return scores, nil
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
