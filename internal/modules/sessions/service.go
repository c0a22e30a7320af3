package sessions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Service owns session lifecycle and summary statistics.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new session service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "sessions").Logger(),
	}
}

// Create opens a new live session. The big blind is derived from the stakes
// string; cash-out and end time stay zero until Close.
func (s *Service) Create(params CreateParams) (*domain.SessionRecord, error) {
	bigBlind, err := parseStakes(params.Stakes)
	if err != nil {
		return nil, err
	}
	if params.BuyIn <= 0 {
		return nil, &domain.InvalidParameterError{Param: "buy_in", Reason: "must be positive"}
	}

	record := domain.SessionRecord{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Stakes:    params.Stakes,
		BigBlind:  bigBlind,
		BuyIn:     params.BuyIn,
		Location:  params.Location,
		Notes:     params.Notes,
	}

	if err := s.repo.Create(record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Close ends a live session with its final cash-out and hand count.
func (s *Service) Close(id string, cashOut float64, handsPlayed int) (*domain.SessionRecord, error) {
	if cashOut < 0 {
		return nil, &domain.InvalidParameterError{Param: "cash_out", Reason: "must not be negative"}
	}
	if handsPlayed < 0 {
		return nil, &domain.InvalidParameterError{Param: "hands_played", Reason: "must not be negative"}
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if !existing.IsLive() {
		return nil, &domain.InvalidParameterError{Param: "id", Reason: "session already closed"}
	}

	if err := s.repo.Close(id, time.Now().UTC(), cashOut, handsPlayed); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Get retrieves a single session, or nil when absent.
func (s *Service) Get(id string) (*domain.SessionRecord, error) {
	return s.repo.GetByID(id)
}

// Recent lists the latest sessions.
func (s *Service) Recent(limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(limit)
}

// Delete removes a session and its hands.
func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

// WinRate returns bb/100 over all closed sessions. Below the documented
// minimum hand count this is an InsufficientDataError, never a number.
func (s *Service) WinRate() (float64, error) {
	all, err := s.repo.ListChronological()
	if err != nil {
		return 0, err
	}

	hands := 0
	profitBB := 0.0
	for _, session := range all {
		if session.IsLive() {
			continue
		}
		hands += session.HandsPlayed
		profitBB += session.ProfitLossBB()
	}

	if hands < MinHandsForWinRate {
		return 0, &domain.InsufficientDataError{
			Op:       "sessions.winrate",
			Required: MinHandsForWinRate,
			Actual:   hands,
		}
	}
	return profitBB / float64(hands) * 100, nil
}

// Summary aggregates the whole session history.
func (s *Service) Summary() (*Summary, error) {
	all, err := s.repo.ListChronological()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Trend: TrendFlat}
	byStakes := make(map[string]*StakeBreakdown)
	var cumulative []float64
	runningBB := 0.0

	for _, session := range all {
		if session.IsLive() {
			continue
		}

		summary.TotalSessions++
		summary.TotalHands += session.HandsPlayed
		summary.TotalProfit += session.ProfitLoss()
		summary.TotalProfitBB += session.ProfitLossBB()
		summary.HoursPlayed += session.Duration().Hours()

		if byStakes[session.Stakes] == nil {
			byStakes[session.Stakes] = &StakeBreakdown{Stakes: session.Stakes}
		}
		b := byStakes[session.Stakes]
		b.Sessions++
		b.Hands += session.HandsPlayed
		b.Profit += session.ProfitLoss()
		b.ProfitBB += session.ProfitLossBB()

		runningBB += session.ProfitLossBB()
		cumulative = append(cumulative, runningBB)
	}

	if summary.TotalHands >= MinHandsForWinRate {
		rate := summary.TotalProfitBB / float64(summary.TotalHands) * 100
		summary.WinRateBB100 = &rate
	}

	for _, b := range byStakes {
		summary.ByStakes = append(summary.ByStakes, *b)
	}
	sort.Slice(summary.ByStakes, func(i, j int) bool {
		return summary.ByStakes[i].Stakes < summary.ByStakes[j].Stakes
	})

	if len(cumulative) >= TrendPeriod {
		summary.TrendEMA = talib.Ema(cumulative, TrendPeriod)
		summary.TrendSMA = talib.Sma(cumulative, TrendPeriod)
		summary.Trend = classifyTrend(summary.TrendEMA, summary.TrendSMA)
	}

	return summary, nil
}

// classifyTrend compares the latest EMA of cumulative P/L against the SMA:
// the faster average above the slower one means recent results beat the
// recent baseline.
func classifyTrend(ema, sma []float64) string {
	if len(ema) == 0 || len(sma) == 0 {
		return TrendFlat
	}
	latestEMA := ema[len(ema)-1]
	latestSMA := sma[len(sma)-1]

	switch {
	case latestEMA > latestSMA:
		return TrendImproving
	case latestEMA < latestSMA:
		return TrendDeclining
	default:
		return TrendFlat
	}
}

// parseStakes derives the big blind from a "small/big" stakes string.
func parseStakes(stakes string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(stakes), "/")
	if len(parts) != 2 {
		return 0, &domain.InvalidParameterError{Param: "stakes", Reason: `expected "small/big" format`}
	}
	bigBlind, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || bigBlind <= 0 {
		return 0, &domain.InvalidParameterError{Param: "stakes", Reason: "big blind must be a positive number"}
	}
	return bigBlind, nil
}
