package calculations

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/railbird/internal/database"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return NewCache(db.Conn(), zerolog.Nop())
}

type cachedResult struct {
	RiskOfRuin float64   `msgpack:"risk_of_ruin"`
	Bands      []float64 `msgpack:"bands"`
}

func TestSetGetRoundTrip(t *testing.T) {
	cache := setupCache(t)

	stored := cachedResult{RiskOfRuin: 0.042, Bands: []float64{1, 2, 3}}
	key := Key("2000", "5", "80")
	require.NoError(t, cache.Set(CategorySimulation, key, stored, DefaultTTL))

	var loaded cachedResult
	require.NoError(t, cache.Get(CategorySimulation, key, &loaded))
	assert.Equal(t, stored, loaded)
}

func TestGetMissAndExpiry(t *testing.T) {
	cache := setupCache(t)

	var dest cachedResult
	assert.ErrorIs(t, cache.Get(CategorySimulation, "absent", &dest), ErrCacheMiss)

	// An entry whose TTL is already spent reads as a miss.
	require.NoError(t, cache.Set(CategorySimulation, "stale", cachedResult{}, -time.Minute))
	assert.ErrorIs(t, cache.Get(CategorySimulation, "stale", &dest), ErrCacheMiss)
}

func TestCategoriesAreIsolated(t *testing.T) {
	cache := setupCache(t)

	require.NoError(t, cache.Set(CategorySimulation, "k", cachedResult{RiskOfRuin: 1}, DefaultTTL))
	require.NoError(t, cache.Set(CategoryWinrate, "k", cachedResult{RiskOfRuin: 2}, DefaultTTL))

	require.NoError(t, cache.InvalidateCategory(CategorySimulation))

	var dest cachedResult
	assert.ErrorIs(t, cache.Get(CategorySimulation, "k", &dest), ErrCacheMiss)
	require.NoError(t, cache.Get(CategoryWinrate, "k", &dest))
	assert.Equal(t, 2.0, dest.RiskOfRuin)
}

func TestSweep(t *testing.T) {
	cache := setupCache(t)

	require.NoError(t, cache.Set(CategorySimulation, "live", cachedResult{}, DefaultTTL))
	require.NoError(t, cache.Set(CategorySimulation, "dead1", cachedResult{}, -time.Minute))
	require.NoError(t, cache.Set(CategorySimulation, "dead2", cachedResult{}, -time.Hour))

	removed, err := cache.Sweep()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	entries, err := cache.Entries()
	require.NoError(t, err)
	assert.Equal(t, 1, entries)
}

func TestKeyDeterminism(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("b", "a"))
}
