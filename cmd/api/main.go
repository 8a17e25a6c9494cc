package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"wikinotes/internal/config"
	pgRepo "wikinotes/internal/infra/adapter/persistence/postgres"
	"wikinotes/internal/infra/db"
	"wikinotes/internal/infra/fetcher"
	"wikinotes/internal/observability/logging"
	"wikinotes/internal/observability/tracing"
	"wikinotes/internal/resilience/circuitbreaker"
	"wikinotes/pkg/security/password"

	artUC "wikinotes/internal/usecase/article"
	favUC "wikinotes/internal/usecase/favorite"
	noteUC "wikinotes/internal/usecase/note"
	userUC "wikinotes/internal/usecase/user"

	hhttp "wikinotes/internal/handler/http"
	harticle "wikinotes/internal/handler/http/article"
	hauth "wikinotes/internal/handler/http/auth"
	hfavorite "wikinotes/internal/handler/http/favorite"
	"wikinotes/internal/handler/http/middleware"
	hnote "wikinotes/internal/handler/http/note"
	"wikinotes/internal/handler/http/requestid"
	huser "wikinotes/internal/handler/http/user"
	authservice "wikinotes/internal/service/auth"
)

// limiterCleanupInterval is how often idle per-IP limiters are dropped.
const limiterCleanupInterval = time.Minute

// options are the command-line flags.
type options struct {
	configPath  string
	migrateOnly bool
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("wikinotes-api", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "YAML config file; environment variables override it")
	flags.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply pending database migrations and exit")
	flags.BoolVar(&opts.showVersion, "version", false, "print the version and exit")
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
	if opts.showVersion {
		fmt.Println(getVersion())
		return
	}

	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Any("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.migrateOnly {
		cfg.Database.MigrateOnStart = true
		database, err := initDatabase(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		_ = database.Close()
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// initDatabase opens the pool and, when enabled, applies pending migrations.
func initDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	database, err := db.Open(ctx, cfg.URL, db.ConnectionConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrations applied")
	}
	return database, nil
}

// ServerComponents holds what the server needs to run and clean up.
type ServerComponents struct {
	Handler      http.Handler
	LoginLimiter *middleware.IPRateLimiter
}

// setupServer builds the services, the routes and the middleware chain.
func setupServer(cfg config.Config, database *sql.DB, logger *slog.Logger) (*ServerComponents, error) {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)
	store := pgRepo.NewStore(breaker)

	hasher, err := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	tokens, err := authservice.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	fetchCfg := fetcher.DefaultConfig()
	fetchCfg.Timeout = cfg.Import.Timeout
	fetchCfg.MaxBodySize = cfg.Import.MaxBodySize
	fetchCfg.MaxRedirects = cfg.Import.MaxRedirects
	fetchCfg.DenyPrivateIPs = cfg.Import.DenyPrivateIPs
	fetchCfg.UserAgent = cfg.Import.UserAgent
	if err := fetchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("import config: %w", err)
	}

	userSvc := &userUC.Service{Store: store, Hasher: hasher}
	artSvc := &artUC.Service{Store: store, Fetcher: fetcher.NewReadabilityFetcher(fetchCfg)}
	noteSvc := &noteUC.Service{Store: store}
	favSvc := &favUC.Service{Store: store}

	proxies, err := middleware.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	if len(proxies) > 0 {
		logger.Info("client IPs taken from proxy headers", slog.Int("trusted_proxies_count", len(proxies)))
	}
	loginLimiter := middleware.NewIPRateLimiter("auth",
		cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateBurst, 10*time.Minute,
		middleware.NewIPExtractor(proxies))

	mux := http.NewServeMux()

	authHandler := hauth.Handler{Users: userSvc, Tokens: tokens}
	limit := loginLimiter.Middleware()
	mux.Handle("POST /auth/register", limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /auth/login", limit(http.HandlerFunc(authHandler.Login)))

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Breaker: breaker, Version: getVersion()})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	harticle.Register(mux, artSvc, cfg.Pagination, logger)
	hnote.Register(mux, noteSvc)
	hfavorite.Register(mux, favSvc)
	huser.Register(mux, userSvc)

	handler := hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.Compress,
		middleware.SecurityHeaders,
		hhttp.InputValidation(cfg.HTTP.MaxBodyBytes),
		hhttp.Timeout(cfg.HTTP.RequestTimeout),
		hauth.Authz(tokens),
	)

	return &ServerComponents{Handler: handler, LoginLimiter: loginLimiter}, nil
}

// setupTracing installs the tracer provider, exporting over OTLP when an
// endpoint is configured.
func setupTracing(ctx context.Context, cfg config.TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		return tracing.Setup(cfg.SampleRatio), nil
	}
	exp, err := tracing.NewOTLPExporter(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	logger.Info("exporting traces", slog.String("endpoint", cfg.OTLPEndpoint))
	return tracing.Setup(cfg.SampleRatio, exp), nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := setupTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	database, err := initDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	components, err := setupServer(cfg, database, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		components.LoginLimiter.Cleanup(gctx, limiterCleanupInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
