// Package worker runs the scheduled stats refresher and its health server.
package worker

import (
	"errors"
	"fmt"
	"time"

	"wikinotes/pkg/config"
)

// Config holds the stats refresher schedule.
type Config struct {
	// Schedule is a five-field cron expression or a descriptor such as
	// "@every 5m".
	Schedule string
	// Timezone is the IANA timezone the schedule is evaluated in.
	Timezone string
	// Timeout bounds a single refresh run.
	Timeout time.Duration
}

// DefaultConfig refreshes every five minutes in UTC.
func DefaultConfig() Config {
	return Config{
		Schedule: "*/5 * * * *",
		Timezone: "UTC",
		Timeout:  30 * time.Second,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}
	if err := config.ValidatePositiveDuration(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	}
	return errors.Join(errs...)
}
