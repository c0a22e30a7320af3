// Package sessions manages logged poker sessions: persistence, lifecycle
// (open, close, delete), and summary statistics over the session history.
package sessions

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Repository handles session database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new session repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "sessions").Logger(),
	}
}

const sessionColumns = `id, started_at, ended_at, stakes, big_blind, buy_in,
	cash_out, hands_played, location, notes`

// Create inserts a new session record.
func (r *Repository) Create(s domain.SessionRecord) error {
	query := `
		INSERT INTO sessions
		(id, started_at, ended_at, stakes, big_blind, buy_in, cash_out, hands_played, location, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var endedAt any
	if !s.EndedAt.IsZero() {
		endedAt = s.EndedAt.Format(time.RFC3339)
	}

	_, err := r.db.Exec(query,
		s.ID,
		s.StartedAt.Format(time.RFC3339),
		endedAt,
		s.Stakes,
		s.BigBlind,
		s.BuyIn,
		s.CashOut,
		s.HandsPlayed,
		s.Location,
		s.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.log.Info().
		Str("session_id", s.ID).
		Str("stakes", s.Stakes).
		Msg("Session created")

	return nil
}

// GetByID retrieves a session, or nil when it does not exist.
func (r *Repository) GetByID(id string) (*domain.SessionRecord, error) {
	row := r.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// ListChronological returns all sessions ordered oldest first, the order
// the analytics modules expect.
func (r *Repository) ListChronological() ([]domain.SessionRecord, error) {
	rows, err := r.db.Query("SELECT " + sessionColumns + " FROM sessions ORDER BY started_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListRecent returns the most recent sessions, newest first.
func (r *Repository) ListRecent(limit int) ([]domain.SessionRecord, error) {
	rows, err := r.db.Query(
		"SELECT "+sessionColumns+" FROM sessions ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// Close stamps the end of a live session with its cash-out and hand count.
func (r *Repository) Close(id string, endedAt time.Time, cashOut float64, handsPlayed int) error {
	result, err := r.db.Exec(
		"UPDATE sessions SET ended_at = ?, cash_out = ?, hands_played = ? WHERE id = ?",
		endedAt.Format(time.RFC3339), cashOut, handsPlayed, id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check close result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", id)
	}

	r.log.Info().Str("session_id", id).Float64("cash_out", cashOut).Msg("Session closed")
	return nil
}

// Delete removes a session. Its hands cascade-delete via the foreign key.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", id)
	}

	r.log.Info().Str("session_id", id).Msg("Session deleted")
	return nil
}

// Count returns the total number of sessions.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.SessionRecord, error) {
	var s domain.SessionRecord
	var startedAt string
	var endedAt sql.NullString

	err := row.Scan(&s.ID, &startedAt, &endedAt, &s.Stakes, &s.BigBlind,
		&s.BuyIn, &s.CashOut, &s.HandsPlayed, &s.Location, &s.Notes)
	if err != nil {
		return s, err
	}

	s.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return s, fmt.Errorf("invalid started_at for session %s: %w", s.ID, err)
	}
	if endedAt.Valid && endedAt.String != "" {
		s.EndedAt, err = time.Parse(time.RFC3339, endedAt.String)
		if err != nil {
			return s, fmt.Errorf("invalid ended_at for session %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]domain.SessionRecord, error) {
	var sessions []domain.SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}
