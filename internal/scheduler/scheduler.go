// Package scheduler runs the service's recurring background work. The only
// job today is the nightly standings position snapshot, so the package is a
// thin wrapper around a gocron scheduler with panic recovery on every job.
package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Scheduler owns the recurring jobs. Register jobs first, then Start; Stop
// waits for in-flight jobs before returning.
type Scheduler struct {
	inner gocron.Scheduler
}

func New() (*Scheduler, error) {
	inner, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduler job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{inner: inner}, nil
}

func (s *Scheduler) Start() {
	log.Info().Msg("Scheduler starting")
	s.inner.Start()
}

func (s *Scheduler) Stop() error {
	log.Info().Msg("Scheduler stopping")
	return s.inner.Shutdown()
}
