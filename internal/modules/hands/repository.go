// Package hands manages logged hands: persistence, hero frequency stats,
// and showdown strength evaluation.
package hands

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Repository handles hand database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new hand repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "hands").Logger(),
	}
}

const handColumns = `id, session_id, played_at, hole_cards, board_cards,
	position, preflop_action, opponent, pot_bb, net_bb, vpip, pfr, aggressive,
	went_to_showdown`

// Create appends a hand record. Hands are never updated afterward.
func (r *Repository) Create(h domain.HandRecord) error {
	query := `
		INSERT INTO hands
		(id, session_id, played_at, hole_cards, board_cards, position,
		 preflop_action, opponent, pot_bb, net_bb, vpip, pfr, aggressive, went_to_showdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		h.ID,
		h.SessionID,
		h.PlayedAt.Format(time.RFC3339Nano),
		h.HoleCards,
		h.BoardCards,
		h.Position,
		h.PreflopAction,
		h.Opponent,
		h.PotBB,
		h.NetBB,
		boolToInt(h.VPIP),
		boolToInt(h.PFR),
		boolToInt(h.Aggressive),
		boolToInt(h.WentToShowdown),
	)
	if err != nil {
		return fmt.Errorf("failed to create hand: %w", err)
	}

	r.log.Debug().
		Str("hand_id", h.ID).
		Str("session_id", h.SessionID).
		Float64("net_bb", h.NetBB).
		Msg("Hand logged")

	return nil
}

// GetByID retrieves a hand, or nil when absent.
func (r *Repository) GetByID(id string) (*domain.HandRecord, error) {
	row := r.db.QueryRow("SELECT "+handColumns+" FROM hands WHERE id = ?", id)
	h, err := scanHand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hand: %w", err)
	}
	return &h, nil
}

// ListBySession returns a session's hands in play order.
func (r *Repository) ListBySession(sessionID string) ([]domain.HandRecord, error) {
	rows, err := r.db.Query(
		"SELECT "+handColumns+" FROM hands WHERE session_id = ? ORDER BY played_at ASC", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session hands: %w", err)
	}
	defer rows.Close()

	return collectHands(rows)
}

// ListChronological returns all hands oldest first.
func (r *Repository) ListChronological() ([]domain.HandRecord, error) {
	rows, err := r.db.Query("SELECT " + handColumns + " FROM hands ORDER BY played_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list hands: %w", err)
	}
	defer rows.Close()

	return collectHands(rows)
}

// ListRecent returns the latest hands across all sessions, newest first.
func (r *Repository) ListRecent(limit int) ([]domain.HandRecord, error) {
	rows, err := r.db.Query(
		"SELECT "+handColumns+" FROM hands ORDER BY played_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent hands: %w", err)
	}
	defer rows.Close()

	return collectHands(rows)
}

// Count returns the total number of logged hands.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM hands").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hands: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHand(row rowScanner) (domain.HandRecord, error) {
	var h domain.HandRecord
	var playedAt string
	var vpip, pfr, aggressive, showdown int

	err := row.Scan(&h.ID, &h.SessionID, &playedAt, &h.HoleCards, &h.BoardCards,
		&h.Position, &h.PreflopAction, &h.Opponent, &h.PotBB, &h.NetBB,
		&vpip, &pfr, &aggressive, &showdown)
	if err != nil {
		return h, err
	}

	h.PlayedAt, err = time.Parse(time.RFC3339Nano, playedAt)
	if err != nil {
		return h, fmt.Errorf("invalid played_at for hand %s: %w", h.ID, err)
	}
	h.VPIP = vpip != 0
	h.PFR = pfr != 0
	h.Aggressive = aggressive != 0
	h.WentToShowdown = showdown != 0
	return h, nil
}

func collectHands(rows *sql.Rows) ([]domain.HandRecord, error) {
	var hands []domain.HandRecord
	for rows.Next() {
		h, err := scanHand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hand: %w", err)
		}
		hands = append(hands, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hands: %w", err)
	}
	return hands, nil
}
