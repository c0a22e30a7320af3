package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/modules/calculations"
)

// CacheSweepJob removes expired calculation cache entries.
type CacheSweepJob struct {
	cache *calculations.Cache
	log   zerolog.Logger
}

// NewCacheSweepJob creates a new CacheSweepJob
func NewCacheSweepJob(cache *calculations.Cache, log zerolog.Logger) *CacheSweepJob {
	return &CacheSweepJob{
		cache: cache,
		log:   log.With().Str("job", "cache_sweep").Logger(),
	}
}

// Name returns the job name
func (j *CacheSweepJob) Name() string {
	return "cache_sweep"
}

// Run executes the cache sweep job
func (j *CacheSweepJob) Run() error {
	removed, err := j.cache.Sweep()
	if err != nil {
		return err
	}
	j.log.Info().Int64("removed", removed).Msg("Cache sweep finished")
	return nil
}
