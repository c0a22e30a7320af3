package hands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/pkg/formulas"
)

// SessionGetter is the slice of the session store the hand service needs.
type SessionGetter interface {
	GetByID(id string) (*domain.SessionRecord, error)
}

// Service owns hand logging and hero statistics.
type Service struct {
	repo     *Repository
	sessions SessionGetter
	log      zerolog.Logger
}

// NewService creates a new hand service.
func NewService(repo *Repository, sessions SessionGetter, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		log:      log.With().Str("component", "hands").Logger(),
	}
}

// Log appends a hand to a session. Cards are validated up front; a hand
// referencing an unknown session is rejected before touching the store.
func (s *Service) Log(params LogParams) (*domain.HandRecord, error) {
	session, err := s.sessions.GetByID(params.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found", params.SessionID)
	}

	if params.HoleCards != "" {
		cards, err := domain.ParseCards(params.HoleCards)
		if err != nil {
			return nil, &domain.InvalidParameterError{Param: "hole_cards", Reason: err.Error()}
		}
		if len(cards) != 2 {
			return nil, &domain.InvalidParameterError{Param: "hole_cards", Reason: "expected exactly 2 cards"}
		}
	}
	if params.BoardCards != "" {
		cards, err := domain.ParseCards(params.BoardCards)
		if err != nil {
			return nil, &domain.InvalidParameterError{Param: "board_cards", Reason: err.Error()}
		}
		if len(cards) > 5 {
			return nil, &domain.InvalidParameterError{Param: "board_cards", Reason: "at most 5 board cards"}
		}
	}

	record := domain.HandRecord{
		ID:             uuid.New().String(),
		SessionID:      params.SessionID,
		PlayedAt:       time.Now().UTC(),
		HoleCards:      params.HoleCards,
		BoardCards:     params.BoardCards,
		Position:       params.Position,
		PreflopAction:  params.PreflopAction,
		Opponent:       params.Opponent,
		PotBB:          params.PotBB,
		NetBB:          params.NetBB,
		VPIP:           params.VPIP,
		PFR:            params.PFR,
		Aggressive:     params.Aggressive,
		WentToShowdown: params.WentToShowdown,
	}

	if err := s.repo.Create(record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SessionStats computes hero frequencies over one session's hands.
func (s *Service) SessionStats(sessionID string) (*Stats, error) {
	hands, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}
	return computeStats(hands), nil
}

// OverallStats computes hero frequencies over the full hand history.
func (s *Service) OverallStats() (*Stats, error) {
	hands, err := s.repo.ListChronological()
	if err != nil {
		return nil, err
	}
	return computeStats(hands), nil
}

// SessionHands returns a session's hands in play order.
func (s *Service) SessionHands(sessionID string) ([]domain.HandRecord, error) {
	return s.repo.ListBySession(sessionID)
}

// AllHands returns the full chronological hand history.
func (s *Service) AllHands() ([]domain.HandRecord, error) {
	return s.repo.ListChronological()
}

// Showdowns evaluates every showdown hand of a session that has complete
// card information. Hands with missing or partial cards are skipped.
func (s *Service) Showdowns(sessionID string) ([]ShowdownInfo, error) {
	hands, err := s.repo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	var infos []ShowdownInfo
	for _, h := range hands {
		if !h.WentToShowdown || h.HoleCards == "" || h.BoardCards == "" {
			continue
		}
		info, err := EvaluateShowdown(h.HoleCards, h.BoardCards)
		if err != nil {
			s.log.Warn().Err(err).Str("hand_id", h.ID).Msg("Skipping unevaluable showdown hand")
			continue
		}
		info.HandID = h.ID
		infos = append(infos, *info)
	}
	return infos, nil
}

// computeStats derives the hero frequency block from hand flags. AF is
// aggressive hands over passive VPIP hands; with no passive hands it
// degrades to the aggressive count.
func computeStats(hands []domain.HandRecord) *Stats {
	stats := &Stats{Hands: len(hands)}
	if len(hands) == 0 {
		return stats
	}

	vpip, pfr, aggressive, showdown := 0, 0, 0, 0
	netBB := make([]float64, len(hands))
	for i, h := range hands {
		if h.VPIP {
			vpip++
		}
		if h.PFR {
			pfr++
		}
		if h.Aggressive {
			aggressive++
		}
		if h.WentToShowdown {
			showdown++
		}
		netBB[i] = h.NetBB
		stats.NetBB += h.NetBB
	}

	n := float64(len(hands))
	stats.VPIP = float64(vpip) / n * 100
	stats.PFR = float64(pfr) / n * 100
	stats.WinRate = formulas.BB100(netBB)

	passive := vpip - aggressive
	if passive > 0 {
		stats.AF = float64(aggressive) / float64(passive)
	} else {
		stats.AF = float64(aggressive)
	}
	if vpip > 0 {
		stats.WTSD = float64(showdown) / float64(vpip) * 100
	}
	return stats
}
