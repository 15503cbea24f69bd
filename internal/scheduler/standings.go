package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/standings"
)

const snapshotTimeout = 5 * time.Minute

// RegisterStandingsSnapshot schedules the position snapshot: every group's
// standings table is ranked and the resulting positions written back onto the
// group-team relations. Reads sorting by stored position get at-most-day-old
// ranks; live ranks stay a query away.
func (s *Scheduler) RegisterStandingsSnapshot(database *db.DB, cronExpr string) error {
	if database == nil {
		return errors.New("standings snapshot requires a database")
	}

	jobLogger := log.With().
		Str("job", "standings_position_snapshot").
		Str("cron", cronExpr).
		Logger()

	_, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
			defer cancel()
			ctx = jobLogger.WithContext(ctx)

			if err := standings.SnapshotAllPositions(ctx, database); err != nil {
				jobLogger.Error().Err(err).Msg("Failed to snapshot standings positions")
				return
			}
			jobLogger.Info().Msg("Standings positions snapshotted")
		}),
		gocron.WithName("standings_position_snapshot"),
	)
	if err != nil {
		return err
	}
	jobLogger.Info().Msg("Standings snapshot scheduled")
	return nil
}
