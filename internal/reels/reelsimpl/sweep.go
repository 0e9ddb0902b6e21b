package reelsimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const sweepTimeout = time.Minute

// ScheduleExpirySweep sets up a periodic job that hard-deletes expired
// stories. Expiry already hides items from ListLive; the sweep just keeps
// the table from growing without bound.
func (r *ReelsImpl) ScheduleExpirySweep(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	interval := time.Duration(r.Config.Sweep.IntervalMinutes) * time.Minute

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				r.Logger.Info("Context cancelled, stopping expiry sweep job")
				return
			}

			sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			defer cancel()

			rowsDeleted, err := r.StoryRepo.DeleteExpired(sweepCtx)
			if err != nil {
				r.Logger.Error("Failed to sweep expired stories", "error", err)
				return
			}

			if rowsDeleted > 0 {
				r.Logger.Info("Expiry sweep completed", "rows_deleted", rowsDeleted)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		r.Logger.Info("Stopping expiry sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			r.Logger.Error("Failed to shut down sweep scheduler", "error", err)
		}
	}()

	return nil
}
