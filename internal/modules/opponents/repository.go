// Package opponents tracks aggregate statistics for the players the hero
// logs hands against. Raw observation counts are stored; the percentage
// stats the analytics modules consume are derived on read.
package opponents

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// counts is the stored aggregate for one opponent.
type counts struct {
	ID         string
	Name       string
	Hands      int
	VPIP       int
	PFR        int
	Aggressive int
	Passive    int
	Showdown   int
	ThreeBet   int
	UpdatedAt  time.Time
}

// record derives the percentage-based domain view from the raw counts.
func (c counts) record() domain.OpponentRecord {
	rec := domain.OpponentRecord{
		ID:           c.ID,
		Name:         c.Name,
		HandsSampled: c.Hands,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.Hands > 0 {
		n := float64(c.Hands)
		rec.VPIP = float64(c.VPIP) / n * 100
		rec.PFR = float64(c.PFR) / n * 100
		rec.ThreeBet = float64(c.ThreeBet) / n * 100
	}
	if c.VPIP > 0 {
		rec.WTSD = float64(c.Showdown) / float64(c.VPIP) * 100
	}
	if c.Passive > 0 {
		rec.AF = float64(c.Aggressive) / float64(c.Passive)
	} else {
		rec.AF = float64(c.Aggressive)
	}
	return rec
}

// Repository handles opponent database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new opponent repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "opponents").Logger(),
	}
}

const opponentColumns = `id, name, hands_sampled, vpip_hands, pfr_hands,
	aggressive_hands, passive_hands, showdown_hands, three_bet_hands, updated_at`

func (r *Repository) create(c counts) error {
	query := `
		INSERT INTO opponents
		(id, name, hands_sampled, vpip_hands, pfr_hands, aggressive_hands,
		 passive_hands, showdown_hands, three_bet_hands, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, c.ID, c.Name, c.Hands, c.VPIP, c.PFR,
		c.Aggressive, c.Passive, c.Showdown, c.ThreeBet,
		c.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create opponent: %w", err)
	}
	return nil
}

func (r *Repository) update(c counts) error {
	query := `
		UPDATE opponents SET hands_sampled = ?, vpip_hands = ?, pfr_hands = ?,
			aggressive_hands = ?, passive_hands = ?, showdown_hands = ?,
			three_bet_hands = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, c.Hands, c.VPIP, c.PFR, c.Aggressive,
		c.Passive, c.Showdown, c.ThreeBet,
		c.UpdatedAt.Format(time.RFC3339), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update opponent: %w", err)
	}
	return nil
}

func (r *Repository) getCountsByName(name string) (*counts, error) {
	row := r.db.QueryRow("SELECT "+opponentColumns+" FROM opponents WHERE name = ?", name)
	c, err := scanCounts(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent: %w", err)
	}
	return &c, nil
}

// GetByName retrieves an opponent's derived stats, or nil when unknown.
func (r *Repository) GetByName(name string) (*domain.OpponentRecord, error) {
	c, err := r.getCountsByName(name)
	if err != nil || c == nil {
		return nil, err
	}
	rec := c.record()
	return &rec, nil
}

// GetByID retrieves an opponent's derived stats, or nil when unknown.
func (r *Repository) GetByID(id string) (*domain.OpponentRecord, error) {
	row := r.db.QueryRow("SELECT "+opponentColumns+" FROM opponents WHERE id = ?", id)
	c, err := scanCounts(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent: %w", err)
	}
	rec := c.record()
	return &rec, nil
}

// List returns all opponents ordered by sample size, biggest first.
func (r *Repository) List() ([]domain.OpponentRecord, error) {
	rows, err := r.db.Query("SELECT " + opponentColumns + " FROM opponents ORDER BY hands_sampled DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}
	defer rows.Close()

	var records []domain.OpponentRecord
	for rows.Next() {
		c, err := scanCounts(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opponent: %w", err)
		}
		records = append(records, c.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opponents: %w", err)
	}
	return records, nil
}

// Delete removes an opponent.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM opponents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete opponent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opponent %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCounts(row rowScanner) (counts, error) {
	var c counts
	var updatedAt string

	err := row.Scan(&c.ID, &c.Name, &c.Hands, &c.VPIP, &c.PFR,
		&c.Aggressive, &c.Passive, &c.Showdown, &c.ThreeBet, &updatedAt)
	if err != nil {
		return c, err
	}

	c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return c, fmt.Errorf("invalid updated_at for opponent %s: %w", c.ID, err)
	}
	return c, nil
}
