package ratelimit

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter keeps per-key buckets in process memory. Used when Redis is not
// configured or unreachable; limits then apply per instance.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: make(map[string]*rate.Limiter)}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}
	if err := rule.validate(); err != nil {
		return Result{}, err
	}

	lim := l.bucket(key, rule)
	now := time.Now()
	res := Result{Limit: rule.Burst}
	if lim.AllowN(now, 1) {
		res.Allowed = true
	} else {
		missing := 1 - lim.TokensAt(now)
		res.RetryAfter = time.Duration(math.Ceil(missing / rule.Rate * float64(time.Second)))
	}
	res.Remaining = int(math.Max(0, math.Floor(lim.TokensAt(now))))
	return res, nil
}

func (l *LocalLimiter) bucket(key string, rule Rule) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets[key]
	if !ok || lim.Limit() != rate.Limit(rule.Rate) || lim.Burst() != rule.Burst {
		lim = rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)
		l.buckets[key] = lim
	}
	return lim
}
