package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"theater/internal/models"
)

type PopularityRefresher interface {
	RefreshWeekMostPopular(ctx context.Context) (*models.PlayRef, error)
}

// PopularityRefreshJob recomputes the week's most popular play on a fixed
// interval so readers rarely hit a cold cache
type PopularityRefreshJob struct {
	plays     PopularityRefresher
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewPopularityRefreshJob(plays PopularityRefresher, interval time.Duration) *PopularityRefreshJob {
	return &PopularityRefreshJob{
		plays:    plays,
		interval: interval,
	}
}

// Start schedules the first run immediately and then every interval
func (j *PopularityRefreshJob) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() { j.refresh(ctx) }),
		gocron.WithName("popularity-refresh"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return fmt.Errorf("failed to schedule popularity refresh: %w", err)
	}

	j.scheduler = s
	s.Start()

	slog.Info("Starting popularity refresh job", "interval", j.interval)
	return nil
}

func (j *PopularityRefreshJob) Stop() {
	if j.scheduler == nil {
		return
	}
	if err := j.scheduler.Shutdown(); err != nil {
		slog.Error("Failed to stop popularity refresh job", "error", err)
		return
	}
	slog.Info("Popularity refresh job stopped")
}

func (j *PopularityRefreshJob) refresh(ctx context.Context) {
	ref, err := j.plays.RefreshWeekMostPopular(ctx)
	if err != nil {
		slog.Error("Failed to refresh week most popular play", "error", err)
		return
	}

	if ref == nil {
		slog.Debug("No play sold tickets this week")
		return
	}
	slog.Debug("Refreshed week most popular play", "play_id", ref.ID, "title", ref.Title)
}
