package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"wikinotes/internal/observability/metrics"
	"wikinotes/internal/repository"
	"wikinotes/pkg/config"
)

// Totals is the number of stored records of each kind.
type Totals struct {
	Users     int64
	Articles  int64
	Notes     int64
	Favorites int64
}

// StatsRefresher periodically counts stored records and publishes the counts
// as Prometheus gauges.
type StatsRefresher struct {
	repos  repository.Repositories
	config Config
	logger *slog.Logger
	cron   *cron.Cron

	mu          sync.Mutex
	lastSuccess time.Time
}

// NewStatsRefresher schedules a refresh according to cfg. Call Run to start it.
func NewStatsRefresher(repos repository.Repositories, cfg Config, logger *slog.Logger) (*StatsRefresher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stats refresher config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	r := &StatsRefresher{
		repos:  repos,
		config: cfg,
		logger: logger,
		cron:   cron.New(cron.WithLocation(loc), cron.WithParser(config.CronParser)),
	}
	if _, err := r.cron.AddFunc(cfg.Schedule, func() {
		r.runJob(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}
	return r, nil
}

// Run refreshes once, then on every scheduled tick until ctx is done. It
// waits for a running refresh to finish before returning.
func (r *StatsRefresher) Run(ctx context.Context) error {
	r.runJob(ctx)
	r.cron.Start()
	r.logger.Info("stats refresher started",
		slog.String("schedule", r.config.Schedule),
		slog.String("timezone", r.config.Timezone))

	<-ctx.Done()
	<-r.cron.Stop().Done()
	r.logger.Info("stats refresher stopped")
	return nil
}

// LastSuccess returns the time of the last successful refresh, or the zero
// time if none succeeded yet.
func (r *StatsRefresher) LastSuccess() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccess
}

func (r *StatsRefresher) runJob(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, r.config.Timeout)
	defer cancel()

	start := time.Now()
	totals, err := r.Refresh(ctx)
	elapsed := time.Since(start)
	if err != nil {
		recordJobRun("failure", elapsed.Seconds())
		metrics.RecordStatsRefreshError()
		r.logger.Error("stats refresh failed", slog.Any("error", err))
		return
	}
	recordJobRun("success", elapsed.Seconds())

	r.mu.Lock()
	r.lastSuccess = time.Now()
	r.mu.Unlock()

	r.logger.Info("stats refreshed",
		slog.Int64("users", totals.Users),
		slog.Int64("articles", totals.Articles),
		slog.Int64("notes", totals.Notes),
		slog.Int64("favorites", totals.Favorites),
		slog.Duration("duration", elapsed))
}

// Refresh counts every record kind and updates the gauges. The gauges are
// left untouched when any count fails.
func (r *StatsRefresher) Refresh(ctx context.Context) (Totals, error) {
	return CountRecords(ctx, r.repos)
}

// CountRecords counts every record kind in repos and publishes the totals
// as gauges. Nothing is published when any count fails.
func CountRecords(ctx context.Context, repos repository.Repositories) (Totals, error) {
	var t Totals
	var err error
	if t.Users, err = repos.Users().Count(ctx); err != nil {
		return Totals{}, fmt.Errorf("count users: %w", err)
	}
	if t.Articles, err = repos.Articles().Count(ctx, repository.ArticleFilter{}); err != nil {
		return Totals{}, fmt.Errorf("count articles: %w", err)
	}
	if t.Notes, err = repos.Notes().Count(ctx); err != nil {
		return Totals{}, fmt.Errorf("count notes: %w", err)
	}
	if t.Favorites, err = repos.Favorites().Count(ctx); err != nil {
		return Totals{}, fmt.Errorf("count favorites: %w", err)
	}
	metrics.RecordTotals(t.Users, t.Articles, t.Notes, t.Favorites)
	return t, nil
}
