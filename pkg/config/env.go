// Package config provides helpers for reading typed settings from
// environment variables and validating them.
//
// The GetEnv* helpers never fail: an unset or blank variable yields the
// default, and an unparseable value yields the default plus a warning log.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup parses the trimmed value of key, falling back to def.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring invalid environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns the value of key, or def when it is unset.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt parses key as a base-10 int.
//
//	maxConns := GetEnvInt("DB_MAX_OPEN_CONNS", 25)
func GetEnvInt(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

// GetEnvInt64 parses key as a base-10 int64.
func GetEnvInt64(key string, def int64) int64 {
	return lookup(key, def, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// GetEnvFloat parses key as a float64.
func GetEnvFloat(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool parses key with strconv.ParseBool (1, t, true, 0, f, false and
// their capitalized forms).
func GetEnvBool(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

// GetEnvDuration parses key with time.ParseDuration, e.g. "30s" or "1h30m".
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

// GetEnvStringList splits key on commas, dropping blank items. A list with
// no items yields def.
//
//	// HTTP_TRUSTED_PROXIES="10.0.0.0/8, 192.168.1.1"
//	proxies := GetEnvStringList("HTTP_TRUSTED_PROXIES", nil)
func GetEnvStringList(key string, def []string) []string {
	var items []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}
