// Package calculations caches analytics results in cache.db so repeated
// requests over unchanged records skip the expensive recompute. Values are
// msgpack blobs with a TTL; keys hash the computation inputs.
package calculations

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Categories namespace the cache so a sweep or invalidation can target one
// computation kind.
const (
	CategorySimulation = "simulation"
	CategoryVolatility = "volatility"
	CategoryWinrate    = "winrate"
	CategoryClustering = "clustering"
	CategorySummary    = "summary"
)

// DefaultTTL is how long a cached result stays valid. Analytics over a
// slow-moving personal database rarely need fresher than this.
const DefaultTTL = 24 * time.Hour

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache provides category/key blob storage with expiration.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a new calculation cache over the cache database.
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Key builds a deterministic cache key from computation inputs. Parts are
// joined and hashed so arbitrary parameter strings stay key-safe.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:16])
}

// Set stores a value under category/key with a TTL.
func (c *Cache) Set(category, key string, value any, ttl time.Duration) error {
	blob, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err = c.db.Exec(`
		INSERT INTO calc_cache (category, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category, key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, category, key, blob, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Get loads a value into dest. Absent or expired entries return
// ErrCacheMiss.
func (c *Cache) Get(category, key string, dest any) error {
	var blob []byte
	var expiresAt int64
	err := c.db.QueryRow(
		"SELECT value, expires_at FROM calc_cache WHERE category = ? AND key = ?",
		category, key).Scan(&blob, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return ErrCacheMiss
	}

	if err := msgpack.Unmarshal(blob, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

// InvalidateCategory drops every entry in a category. Called when the
// underlying records change.
func (c *Cache) InvalidateCategory(category string) error {
	_, err := c.db.Exec("DELETE FROM calc_cache WHERE category = ?", category)
	if err != nil {
		return fmt.Errorf("failed to invalidate category %s: %w", category, err)
	}
	return nil
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() error {
	_, err := c.db.Exec("DELETE FROM calc_cache")
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Sweep deletes expired entries and returns how many were removed. The
// scheduler runs this nightly.
func (c *Cache) Sweep() (int64, error) {
	result, err := c.db.Exec("DELETE FROM calc_cache WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep cache: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept entries: %w", err)
	}
	if removed > 0 {
		c.log.Info().Int64("removed", removed).Msg("Swept expired cache entries")
	}
	return removed, nil
}

// Entries returns the live entry count, for the system endpoint.
func (c *Cache) Entries() (int, error) {
	var count int
	err := c.db.QueryRow(
		"SELECT COUNT(*) FROM calc_cache WHERE expires_at >= ?",
		time.Now().Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}
