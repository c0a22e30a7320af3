// Package domain contains the pure data model shared by all modules.
// The domain layer has no infrastructure dependencies; records are created
// by the persistence modules and consumed read-only by the analytics engine.
package domain

import (
	"time"
)

// SessionRecord is a single logged poker session. Immutable once closed;
// a live session has a zero EndedAt and CashOut until it is closed.
type SessionRecord struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	Stakes      string    `json:"stakes"` // e.g. "0.05/0.10"
	BigBlind    float64   `json:"big_blind"`
	BuyIn       float64   `json:"buy_in"`
	CashOut     float64   `json:"cash_out"`
	HandsPlayed int       `json:"hands_played"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// ProfitLoss returns the session result in currency units.
func (s SessionRecord) ProfitLoss() float64 {
	return s.CashOut - s.BuyIn
}

// ProfitLossBB returns the session result normalized to big blinds.
// Returns 0 for sessions with an unknown big blind.
func (s SessionRecord) ProfitLossBB() float64 {
	if s.BigBlind <= 0 {
		return 0
	}
	return s.ProfitLoss() / s.BigBlind
}

// IsLive reports whether the session has not been closed yet.
func (s SessionRecord) IsLive() bool {
	return s.EndedAt.IsZero()
}

// Duration returns the session length, or elapsed time for live sessions.
func (s SessionRecord) Duration() time.Duration {
	if s.IsLive() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// HandRecord is a single logged hand. Append-only: hands are never updated
// after logging. Every hand references a valid SessionRecord (enforced by a
// foreign key in the store).
type HandRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	PlayedAt       time.Time `json:"played_at"`
	HoleCards      string    `json:"hole_cards"`  // e.g. "Ah Kd"
	BoardCards     string    `json:"board_cards"` // 0-5 cards, street-dependent
	Position       string    `json:"position"`    // UTG, MP, CO, BTN, SB, BB
	PreflopAction  string    `json:"preflop_action"`
	Opponent       string    `json:"opponent,omitempty"` // main villain, when noted
	PotBB          float64   `json:"pot_bb"`
	NetBB          float64   `json:"net_bb"` // hero result in big blinds
	VPIP           bool      `json:"vpip"`
	PFR            bool      `json:"pfr"`
	Aggressive     bool      `json:"aggressive"`
	WentToShowdown bool      `json:"went_to_showdown"`
}

// OpponentRecord holds aggregated statistics for a tracked opponent.
// The aggregates are maintained incrementally by the opponents service;
// the analytics engine never mutates them.
type OpponentRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	VPIP         float64   `json:"vpip"`      // percent, 0-100
	PFR          float64   `json:"pfr"`       // percent, 0-100
	AF           float64   `json:"af"`        // aggression factor
	WTSD         float64   `json:"wtsd"`      // percent, 0-100
	ThreeBet     float64   `json:"three_bet"` // percent, 0-100
	HandsSampled int       `json:"hands_sampled"`
	UpdatedAt    time.Time `json:"updated_at"`
}
