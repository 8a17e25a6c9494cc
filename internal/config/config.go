// Package config assembles the service configuration from defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"wikinotes/internal/common/pagination"
	envconfig "wikinotes/pkg/config"
)

// MinJWTSecretLength is the minimum accepted HS256 secret length.
const MinJWTSecretLength = 32

// Bounds for JWT_EXPIRY.
const (
	MinTokenExpiry = time.Minute
	MaxTokenExpiry = 30 * 24 * time.Hour
)

// Config is the complete service configuration.
type Config struct {
	HTTP       HTTPConfig        `yaml:"http"`
	Database   DatabaseConfig    `yaml:"database"`
	Auth       AuthConfig        `yaml:"auth"`
	Log        LogConfig         `yaml:"log"`
	Stats      StatsConfig       `yaml:"stats"`
	Import     ImportConfig      `yaml:"import"`
	Tracing    TracingConfig     `yaml:"tracing"`
	Pagination pagination.Config `yaml:"pagination"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
	// BcryptCost of 0 selects bcrypt.DefaultCost.
	BcryptCost int `yaml:"bcrypt_cost"`
	// LoginRateLimit is the sustained requests per second allowed per client
	// IP on /auth endpoints.
	LoginRateLimit float64 `yaml:"login_rate_limit"`
	LoginRateBurst int     `yaml:"login_rate_burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StatsConfig configures the worker that refreshes the record-count gauges.
type StatsConfig struct {
	// Schedule is a cron expression; empty disables the refresher.
	Schedule string `yaml:"schedule"`
	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string        `yaml:"timezone"`
	Timeout  time.Duration `yaml:"timeout"`
	// HealthAddr is the listen address of the worker's health and metrics server.
	HealthAddr string `yaml:"health_addr"`
}

type ImportConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodySize    int64         `yaml:"max_body_size"`
	MaxRedirects   int           `yaml:"max_redirects"`
	DenyPrivateIPs bool          `yaml:"deny_private_ips"`
	UserAgent      string        `yaml:"user_agent"`
}

// TracingConfig controls span sampling and export. An empty OTLPEndpoint
// keeps spans in process.
type TracingConfig struct {
	SampleRatio  float64 `yaml:"sample_ratio"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			MigrateOnStart:  true,
		},
		Auth: AuthConfig{
			TokenExpiry:    24 * time.Hour,
			LoginRateLimit: 0.5,
			LoginRateBurst: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Stats: StatsConfig{
			Schedule:   "*/5 * * * *",
			Timezone:   "UTC",
			Timeout:    30 * time.Second,
			HealthAddr: ":9091",
		},
		Import: ImportConfig{
			Timeout:        10 * time.Second,
			MaxBodySize:    10 << 20,
			MaxRedirects:   5,
			DenyPrivateIPs: true,
			UserAgent:      "wikinotes-importer/1.0",
		},
		Tracing: TracingConfig{
			SampleRatio: 1.0,
		},
		Pagination: pagination.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables. The result is validated.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the
// file layer.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with any environment variables that are set.
func ApplyEnv(cfg *Config) {
	cfg.HTTP.Addr = envconfig.GetEnvString("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ReadTimeout = envconfig.GetEnvDuration("HTTP_READ_TIMEOUT", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = envconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout)
	cfg.HTTP.IdleTimeout = envconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", cfg.HTTP.IdleTimeout)
	cfg.HTTP.RequestTimeout = envconfig.GetEnvDuration("HTTP_REQUEST_TIMEOUT", cfg.HTTP.RequestTimeout)
	cfg.HTTP.ShutdownTimeout = envconfig.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.MaxBodyBytes = envconfig.GetEnvInt64("HTTP_MAX_BODY_BYTES", cfg.HTTP.MaxBodyBytes)
	cfg.HTTP.TrustedProxies = envconfig.GetEnvStringList("HTTP_TRUSTED_PROXIES", cfg.HTTP.TrustedProxies)

	cfg.Database.URL = envconfig.GetEnvString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxOpenConns = envconfig.GetEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = envconfig.GetEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = envconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = envconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.Database.ConnMaxIdleTime)
	cfg.Database.MigrateOnStart = envconfig.GetEnvBool("DB_MIGRATE_ON_START", cfg.Database.MigrateOnStart)

	cfg.Auth.JWTSecret = envconfig.GetEnvString("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenExpiry = envconfig.GetEnvDuration("JWT_EXPIRY", cfg.Auth.TokenExpiry)
	cfg.Auth.BcryptCost = envconfig.GetEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.LoginRateLimit = envconfig.GetEnvFloat("LOGIN_RATE_LIMIT", cfg.Auth.LoginRateLimit)
	cfg.Auth.LoginRateBurst = envconfig.GetEnvInt("LOGIN_RATE_BURST", cfg.Auth.LoginRateBurst)

	cfg.Log.Level = envconfig.GetEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envconfig.GetEnvString("LOG_FORMAT", cfg.Log.Format)

	cfg.Stats.Schedule = envconfig.GetEnvString("STATS_REFRESH_SCHEDULE", cfg.Stats.Schedule)
	cfg.Stats.Timezone = envconfig.GetEnvString("STATS_TIMEZONE", cfg.Stats.Timezone)
	cfg.Stats.Timeout = envconfig.GetEnvDuration("STATS_REFRESH_TIMEOUT", cfg.Stats.Timeout)
	cfg.Stats.HealthAddr = envconfig.GetEnvString("WORKER_HEALTH_ADDR", cfg.Stats.HealthAddr)

	cfg.Import.Timeout = envconfig.GetEnvDuration("IMPORT_TIMEOUT", cfg.Import.Timeout)
	cfg.Import.MaxBodySize = envconfig.GetEnvInt64("IMPORT_MAX_BODY_SIZE", cfg.Import.MaxBodySize)
	cfg.Import.MaxRedirects = envconfig.GetEnvInt("IMPORT_MAX_REDIRECTS", cfg.Import.MaxRedirects)
	cfg.Import.DenyPrivateIPs = envconfig.GetEnvBool("IMPORT_DENY_PRIVATE_IPS", cfg.Import.DenyPrivateIPs)
	cfg.Import.UserAgent = envconfig.GetEnvString("IMPORT_USER_AGENT", cfg.Import.UserAgent)

	cfg.Tracing.SampleRatio = envconfig.GetEnvFloat("TRACING_SAMPLE_RATIO", cfg.Tracing.SampleRatio)
	cfg.Tracing.OTLPEndpoint = envconfig.GetEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)

	cfg.Pagination = pagination.LoadFromEnv(cfg.Pagination)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.HTTP.Addr == "" {
		add("http addr is required")
	}
	for name, d := range map[string]time.Duration{
		"http read_timeout":       c.HTTP.ReadTimeout,
		"http write_timeout":      c.HTTP.WriteTimeout,
		"http request_timeout":    c.HTTP.RequestTimeout,
		"http shutdown_timeout":   c.HTTP.ShutdownTimeout,
		"auth token_expiry":       c.Auth.TokenExpiry,
		"import timeout":          c.Import.Timeout,
		"stats timeout":           c.Stats.Timeout,
		"database conn_lifetime":  c.Database.ConnMaxLifetime,
		"database conn_idle_time": c.Database.ConnMaxIdleTime,
	} {
		if err := envconfig.ValidatePositiveDuration(d); err != nil {
			add("%s: %w", name, err)
		}
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		add("http max_body_bytes must be positive")
	}
	for _, p := range c.HTTP.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err != nil {
			if _, err := netip.ParseAddr(p); err != nil {
				add("http trusted_proxies: %q is not an IP or CIDR", p)
			}
		}
	}

	if c.Database.URL == "" {
		add("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		add("database max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		add("database max_idle_conns must be between 0 and max_open_conns")
	}

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		add("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if c.Auth.TokenExpiry > 0 {
		if err := envconfig.ValidateDurationRange(c.Auth.TokenExpiry, MinTokenExpiry, MaxTokenExpiry); err != nil {
			add("auth token_expiry: %w", err)
		}
	}
	if c.Auth.BcryptCost != 0 {
		if err := envconfig.ValidateIntRange(c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost); err != nil {
			add("bcrypt cost: %w", err)
		}
	}
	if c.Auth.LoginRateLimit <= 0 || c.Auth.LoginRateBurst < 1 {
		add("login rate limit and burst must be positive")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		add("log format must be json or text, got %q", c.Log.Format)
	}

	if c.Stats.Schedule != "" {
		if err := envconfig.ValidateCronSchedule(c.Stats.Schedule); err != nil {
			add("stats schedule: %w", err)
		}
	}
	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		add("stats timezone: %w", err)
	}

	if c.Import.MaxBodySize <= 0 {
		add("import max_body_size must be positive")
	}
	if c.Import.MaxRedirects < 0 {
		add("import max_redirects must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		add("tracing sample_ratio must be within [0, 1]")
	}
	if err := c.Pagination.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LogValue renders the configuration without secrets.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTP.Addr),
		slog.Bool("database_url_set", c.Database.URL != ""),
		slog.Int("db_max_open_conns", c.Database.MaxOpenConns),
		slog.Duration("token_expiry", c.Auth.TokenExpiry),
		slog.Int("bcrypt_cost", c.Auth.BcryptCost),
		slog.String("log_level", c.Log.Level),
		slog.String("stats_schedule", c.Stats.Schedule),
		slog.Bool("import_deny_private_ips", c.Import.DenyPrivateIPs),
	)
}
