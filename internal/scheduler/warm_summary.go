package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/sessions"
)

// WarmSummaryJob precomputes the session summary overnight so the first
// morning request does not pay for the trend calculation.
type WarmSummaryJob struct {
	service *sessions.Service
	cache   *calculations.Cache
	log     zerolog.Logger
}

// NewWarmSummaryJob creates a new WarmSummaryJob
func NewWarmSummaryJob(service *sessions.Service, cache *calculations.Cache, log zerolog.Logger) *WarmSummaryJob {
	return &WarmSummaryJob{
		service: service,
		cache:   cache,
		log:     log.With().Str("job", "warm_summary").Logger(),
	}
}

// Name returns the job name
func (j *WarmSummaryJob) Name() string {
	return "warm_summary"
}

// Run executes the summary warm job
func (j *WarmSummaryJob) Run() error {
	summary, err := j.service.Summary()
	if err != nil {
		return err
	}

	key := calculations.Key("overall")
	if err := j.cache.Set(calculations.CategorySummary, key, summary, calculations.DefaultTTL); err != nil {
		return err
	}

	j.log.Info().Int("sessions", summary.TotalSessions).Msg("Session summary warmed")
	return nil
}
