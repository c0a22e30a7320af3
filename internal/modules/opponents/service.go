package opponents

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Observation is one logged hand's worth of evidence about an opponent.
// Aggressive and passive are mutually exclusive reads of how they played
// the hand when they entered the pot.
type Observation struct {
	VPIP           bool `json:"vpip"`
	PFR            bool `json:"pfr"`
	Aggressive     bool `json:"aggressive"`
	WentToShowdown bool `json:"went_to_showdown"`
	ThreeBet       bool `json:"three_bet"`
}

// Service owns incremental opponent stat aggregation.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new opponent service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "opponents").Logger(),
	}
}

// Observe folds one hand observation into an opponent's aggregates,
// creating the opponent on first sight. Names are matched case-insensitively
// after trimming.
func (s *Service) Observe(name string, obs Observation) (*domain.OpponentRecord, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, &domain.InvalidParameterError{Param: "name", Reason: "must not be empty"}
	}

	existing, err := s.repo.getCountsByName(name)
	if err != nil {
		return nil, err
	}

	c := counts{ID: uuid.New().String(), Name: name}
	if existing != nil {
		c = *existing
	}

	c.Hands++
	if obs.VPIP {
		c.VPIP++
		if obs.Aggressive {
			c.Aggressive++
		} else {
			c.Passive++
		}
	}
	if obs.PFR {
		c.PFR++
	}
	if obs.WentToShowdown {
		c.Showdown++
	}
	if obs.ThreeBet {
		c.ThreeBet++
	}
	c.UpdatedAt = time.Now().UTC()

	if existing == nil {
		err = s.repo.create(c)
	} else {
		err = s.repo.update(c)
	}
	if err != nil {
		return nil, err
	}

	rec := c.record()
	return &rec, nil
}

// Get retrieves an opponent by name, or nil when unknown.
func (s *Service) Get(name string) (*domain.OpponentRecord, error) {
	return s.repo.GetByName(normalizeName(name))
}

// All returns every tracked opponent.
func (s *Service) All() ([]domain.OpponentRecord, error) {
	return s.repo.List()
}

// Delete removes a tracked opponent by id.
func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
