package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/database"
)

// WALCheckpointJob truncates the write-ahead logs so long-running
// processes do not accumulate unbounded WAL files.
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WALCheckpointJob
func NewWALCheckpointJob(log zerolog.Logger, databases ...*database.DB) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the WAL checkpoint job
func (j *WALCheckpointJob) Run() error {
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		var busy, logFrames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(TRUNCATE)").
			Scan(&busy, &logFrames, &checkpointed)
		if err != nil {
			return fmt.Errorf("checkpoint failed for %s: %w", db.Name(), err)
		}

		j.log.Debug().
			Str("database", db.Name()).
			Int("busy", busy).
			Int("log_frames", logFrames).
			Int("checkpointed", checkpointed).
			Msg("WAL checkpoint complete")
	}
	return nil
}
