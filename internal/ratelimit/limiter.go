package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Rule is a token bucket: Rate tokens per second refilled up to Burst.
type Rule struct {
	Rate  float64
	Burst int
}

func (r Rule) validate() error {
	if r.Rate <= 0 {
		return errors.New("rate limiter rate must be positive")
	}
	if r.Burst <= 0 {
		return errors.New("rate limiter burst must be positive")
	}
	return nil
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}
