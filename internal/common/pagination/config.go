// Package pagination provides page/limit parsing, offset arithmetic and the
// paginated response envelope used by list endpoints.
package pagination

import (
	"fmt"

	"wikinotes/pkg/config"
)

// Config holds the page defaults and the largest accepted limit.
type Config struct {
	DefaultPage  int `yaml:"default_page"`
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// DefaultConfig is page 1, 20 items, at most 100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv overlays PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT and
// PAGINATION_MAX_LIMIT onto base.
func LoadFromEnv(base Config) Config {
	return Config{
		DefaultPage:  config.GetEnvInt("PAGINATION_DEFAULT_PAGE", base.DefaultPage),
		DefaultLimit: config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", base.DefaultLimit),
		MaxLimit:     config.GetEnvInt("PAGINATION_MAX_LIMIT", base.MaxLimit),
	}
}

// Validate checks that the defaults are usable.
func (c Config) Validate() error {
	if c.DefaultPage < 1 {
		return fmt.Errorf("pagination default_page must be positive, got %d", c.DefaultPage)
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("pagination max_limit must be positive, got %d", c.MaxLimit)
	}
	if err := config.ValidateIntRange(c.DefaultLimit, 1, c.MaxLimit); err != nil {
		return fmt.Errorf("pagination default_limit: %w", err)
	}
	return nil
}
