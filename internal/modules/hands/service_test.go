package hands

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/sessions"
)

func setupService(t *testing.T) (*Service, string) {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "railbird.db"),
		Name: "railbird",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	sessionRepo := sessions.NewRepository(db.Conn(), zerolog.Nop())
	sessionSvc := sessions.NewService(sessionRepo, zerolog.Nop())
	session, err := sessionSvc.Create(sessions.CreateParams{Stakes: "0.05/0.10", BuyIn: 20})
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, sessionRepo, zerolog.Nop()), session.ID
}

func TestLogHand(t *testing.T) {
	svc, sessionID := setupService(t)

	hand, err := svc.Log(LogParams{
		SessionID:     sessionID,
		HoleCards:     "Ah Kd",
		Position:      "BTN",
		PreflopAction: "raise",
		NetBB:         4.5,
		VPIP:          true,
		PFR:           true,
		Aggressive:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, hand.ID)

	stored, err := svc.repo.GetByID(hand.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ah Kd", stored.HoleCards)
	assert.Equal(t, 4.5, stored.NetBB)
	assert.True(t, stored.VPIP)
}

func TestLogHandValidation(t *testing.T) {
	svc, sessionID := setupService(t)

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Log(LogParams{SessionID: "nope", HoleCards: "Ah Kd"})
		assert.Error(t, err)
	})

	t.Run("bad hole cards", func(t *testing.T) {
		_, err := svc.Log(LogParams{SessionID: sessionID, HoleCards: "Ah Kd Qd"})
		var invalidErr *domain.InvalidParameterError
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("bad board", func(t *testing.T) {
		_, err := svc.Log(LogParams{SessionID: sessionID, BoardCards: "Ah Kd Qd Jd Td 9d"})
		var invalidErr *domain.InvalidParameterError
		assert.ErrorAs(t, err, &invalidErr)
	})
}

func TestSessionStats(t *testing.T) {
	svc, sessionID := setupService(t)

	// 4 hands: 2 VPIP (1 aggressive, 1 passive), 1 PFR, 1 showdown.
	specs := []LogParams{
		{SessionID: sessionID, NetBB: -1, VPIP: true, PFR: true, Aggressive: true},
		{SessionID: sessionID, NetBB: 3, VPIP: true, WentToShowdown: true},
		{SessionID: sessionID, NetBB: 0},
		{SessionID: sessionID, NetBB: -0.5},
	}
	for _, p := range specs {
		_, err := svc.Log(p)
		require.NoError(t, err)
	}

	stats, err := svc.SessionStats(sessionID)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Hands)
	assert.InDelta(t, 50.0, stats.VPIP, 1e-9)
	assert.InDelta(t, 25.0, stats.PFR, 1e-9)
	assert.InDelta(t, 1.0, stats.AF, 1e-9)   // 1 aggressive / 1 passive VPIP
	assert.InDelta(t, 50.0, stats.WTSD, 1e-9) // 1 showdown / 2 VPIP
	assert.InDelta(t, 1.5, stats.NetBB, 1e-9)
	assert.InDelta(t, 1.5/4*100, stats.WinRate, 1e-9)
}

func TestStatsEmpty(t *testing.T) {
	svc, sessionID := setupService(t)

	stats, err := svc.SessionStats(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Hands)
	assert.Zero(t, stats.VPIP)
}

func TestShowdowns(t *testing.T) {
	svc, sessionID := setupService(t)

	_, err := svc.Log(LogParams{
		SessionID: sessionID, HoleCards: "Ah Kh", BoardCards: "Qh Jh Th",
		NetBB: 25, VPIP: true, WentToShowdown: true,
	})
	require.NoError(t, err)

	// Showdown without recorded cards is skipped, not an error.
	_, err = svc.Log(LogParams{SessionID: sessionID, NetBB: 2, VPIP: true, WentToShowdown: true})
	require.NoError(t, err)

	// Non-showdown hands are ignored.
	_, err = svc.Log(LogParams{SessionID: sessionID, HoleCards: "2c 2d", BoardCards: "Ah Kh Qh", NetBB: -1, VPIP: true})
	require.NoError(t, err)

	infos, err := svc.Showdowns(sessionID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, ClassStraightFlush, infos[0].Class)
	assert.NotEmpty(t, infos[0].HandID)
}
