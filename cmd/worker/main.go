package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"wikinotes/internal/config"
	pgRepo "wikinotes/internal/infra/adapter/persistence/postgres"
	"wikinotes/internal/infra/db"
	workerPkg "wikinotes/internal/infra/worker"
	"wikinotes/internal/observability/logging"
	"wikinotes/internal/resilience/circuitbreaker"
)

// waitForMigrations polls until the api has created the schema.
func waitForMigrations(ctx context.Context, logger *slog.Logger, database *sql.DB) error {
	const probe = "SELECT 1 FROM articles LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.ExecContext(ctx, probe); err == nil {
			return nil
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("migrations did not complete in time")
}

// options are the command-line flags.
type options struct {
	configPath string
	once       bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("wikinotes-worker", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "YAML config file; environment variables override it")
	flags.BoolVar(&opts.once, "once", false, "refresh the stats once, print the totals and exit")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *slog.Logger) error {
	database, err := db.Open(ctx, cfg.Database.URL, db.ConnectionConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := waitForMigrations(ctx, logger, database); err != nil {
		return err
	}

	if opts.once {
		return refreshOnce(ctx, database, cfg.Stats.Timeout, logger)
	}

	health := workerPkg.NewHealthServer(cfg.Stats.HealthAddr, logger)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Stats.Schedule == "" {
		logger.Warn("stats refresher disabled: no schedule configured")
	} else {
		store := pgRepo.NewStore(circuitbreaker.NewDBCircuitBreaker(database))
		refresher, err := workerPkg.NewStatsRefresher(store, workerPkg.Config{
			Schedule: cfg.Stats.Schedule,
			Timezone: cfg.Stats.Timezone,
			Timeout:  cfg.Stats.Timeout,
		}, logger)
		if err != nil {
			return err
		}
		health.Attach(refresher)
		g.Go(func() error { return refresher.Run(gctx) })
	}

	health.SetReady(true)
	g.Go(func() error { return health.Start(gctx) })
	return g.Wait()
}

// refreshOnce counts the records a single time without scheduling.
func refreshOnce(ctx context.Context, database *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	store := pgRepo.NewStore(circuitbreaker.NewDBCircuitBreaker(database))
	totals, err := workerPkg.CountRecords(ctx, store)
	if err != nil {
		return err
	}
	logger.Info("stats refreshed",
		slog.Int64("users", totals.Users),
		slog.Int64("articles", totals.Articles),
		slog.Int64("notes", totals.Notes),
		slog.Int64("favorites", totals.Favorites))
	return nil
}
