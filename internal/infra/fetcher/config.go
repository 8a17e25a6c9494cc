package fetcher

import (
	"fmt"
	"time"

	"wikinotes/internal/resilience/retry"
)

// Config controls how article pages are downloaded.
type Config struct {
	// Timeout bounds a single page request including redirects.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes. It is enforced
	// while reading, not from Content-Length.
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow. Each target
	// is validated like the original URL.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs whose host resolves to a loopback, private
	// or link-local address. Only tests turn it off.
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	UserAgent string

	// Retry governs repeated attempts after a transient failure such as a
	// reset connection or an upstream 5xx.
	Retry retry.Config
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "wikinotes-importer/1.0",
		Retry:          retry.PageFetchConfig(),
	}
}

// Validate checks the configuration for values that would make every
// request fail.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("max body size must be positive, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative, got %d", c.MaxRedirects)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}
	return nil
}
