package sessions

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/domain"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "railbird.db"),
		Name: "railbird",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, zerolog.Nop())
}

func closedSession(t *testing.T, svc *Service, stakes string, buyIn, cashOut float64, hands int) *domain.SessionRecord {
	t.Helper()

	created, err := svc.Create(CreateParams{Stakes: stakes, BuyIn: buyIn})
	require.NoError(t, err)
	closed, err := svc.Close(created.ID, cashOut, hands)
	require.NoError(t, err)
	return closed
}

func TestCreateAndClose(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(CreateParams{Stakes: "0.05/0.10", BuyIn: 20, Location: "home game"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0.10, created.BigBlind)
	assert.True(t, created.IsLive())

	closed, err := svc.Close(created.ID, 35, 240)
	require.NoError(t, err)
	assert.False(t, closed.IsLive())
	assert.Equal(t, 15.0, closed.ProfitLoss())
	assert.InDelta(t, 150.0, closed.ProfitLossBB(), 1e-9)
	assert.Equal(t, 240, closed.HandsPlayed)

	// Closing twice is a caller error.
	_, err = svc.Close(created.ID, 35, 240)
	var invalidErr *domain.InvalidParameterError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestCreateValidation(t *testing.T) {
	svc := setupService(t)

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"malformed stakes", CreateParams{Stakes: "1NL", BuyIn: 20}},
		{"zero big blind", CreateParams{Stakes: "0/0", BuyIn: 20}},
		{"zero buy-in", CreateParams{Stakes: "0.05/0.10", BuyIn: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.params)
			var invalidErr *domain.InvalidParameterError
			assert.ErrorAs(t, err, &invalidErr)
		})
	}
}

func TestDeleteUnknownSession(t *testing.T) {
	svc := setupService(t)
	assert.Error(t, svc.Delete(uuid.New().String()))
}

func TestWinRateRequiresSample(t *testing.T) {
	svc := setupService(t)

	closedSession(t, svc, "0.05/0.10", 20, 30, 400)

	_, err := svc.WinRate()
	var insufficientErr *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, MinHandsForWinRate, insufficientErr.Required)
	assert.Equal(t, 400, insufficientErr.Actual)

	closedSession(t, svc, "0.05/0.10", 20, 26, 800)

	rate, err := svc.WinRate()
	require.NoError(t, err)
	// +100bb and +60bb over 1200 hands.
	assert.InDelta(t, 160.0/1200*100, rate, 1e-9)
}

func TestSummary(t *testing.T) {
	svc := setupService(t)

	closedSession(t, svc, "0.05/0.10", 20, 35, 300)
	closedSession(t, svc, "0.05/0.10", 20, 12, 250)
	closedSession(t, svc, "0.25/0.50", 100, 180, 200)

	// A live session must not count.
	_, err := svc.Create(CreateParams{Stakes: "0.05/0.10", BuyIn: 20})
	require.NoError(t, err)

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalSessions)
	assert.Equal(t, 750, summary.TotalHands)
	assert.InDelta(t, 15-8+80, summary.TotalProfit, 1e-9)
	assert.InDelta(t, 150-80+160, summary.TotalProfitBB, 1e-9)
	assert.Nil(t, summary.WinRateBB100, "750 hands is below the winrate minimum")

	require.Len(t, summary.ByStakes, 2)
	assert.Equal(t, "0.05/0.10", summary.ByStakes[0].Stakes)
	assert.Equal(t, 2, summary.ByStakes[0].Sessions)
	assert.Equal(t, "0.25/0.50", summary.ByStakes[1].Stakes)

	// Too few sessions for a trend readout.
	assert.Equal(t, TrendFlat, summary.Trend)
	assert.Empty(t, summary.TrendEMA)
}

func TestSummaryTrend(t *testing.T) {
	svc := setupService(t)

	// Losing early, winning late: the trend should read improving.
	for i := 0; i < TrendPeriod; i++ {
		closedSession(t, svc, "0.05/0.10", 20, 15, 100)
	}
	for i := 0; i < TrendPeriod; i++ {
		closedSession(t, svc, "0.05/0.10", 20, 40, 100)
	}

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, TrendImproving, summary.Trend)
	assert.NotEmpty(t, summary.TrendEMA)

	winRate, err := svc.WinRate()
	require.NoError(t, err)
	assert.Greater(t, winRate, 0.0)
}

func TestRecentOrdering(t *testing.T) {
	svc := setupService(t)

	first := closedSession(t, svc, "0.05/0.10", 20, 25, 100)
	time.Sleep(1100 * time.Millisecond) // RFC3339 second resolution
	second := closedSession(t, svc, "0.05/0.10", 20, 25, 100)

	recent, err := svc.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
}

func TestCloseValidation(t *testing.T) {
	svc := setupService(t)
	created, err := svc.Create(CreateParams{Stakes: "0.05/0.10", BuyIn: 20})
	require.NoError(t, err)

	_, err = svc.Close(created.ID, -1, 100)
	var invalidErr *domain.InvalidParameterError
	assert.ErrorAs(t, err, &invalidErr)

	_, err = svc.Close(uuid.New().String(), 10, 100)
	assert.Error(t, err)
	assert.False(t, errors.As(err, &invalidErr))
}
