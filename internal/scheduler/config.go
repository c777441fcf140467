package scheduler

import (
	"time"

	"github.com/smallbiznis/voltshop/internal/config"
)

// Config controls the confirmation sweep cadence. BatchSize 0 defers to the
// store settings.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
	JobTimeout  time.Duration
	LockTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 5 * time.Minute,
		JobTimeout:  2 * time.Minute,
		LockTTL:     5 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	out := DefaultConfig()
	out.RunInterval = cfg.ConfirmationSweepInterval
	return out
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize < 0 {
		c.BatchSize = 0
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	// The lock must outlive a job that runs to its timeout.
	if c.LockTTL < c.JobTimeout {
		c.LockTTL = c.JobTimeout
	}
	return c
}
