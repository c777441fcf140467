package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/voltshop/internal/config"
	"go.uber.org/zap"
)

const keyPublicEndpoint = "voltshop:ratelimit:%s:%s"

// PublicLimiter throttles anonymous storefront endpoints per client IP. The
// shared Redis bucket is preferred; on Redis errors it falls back to the
// in-process limiter instead of rejecting shoppers.
type PublicLimiter struct {
	enabled bool
	rule    Rule
	shared  Limiter
	local   Limiter
	log     *zap.Logger
}

func NewPublicLimiter(cfg config.Config, bucket *TokenBucket, log *zap.Logger) *PublicLimiter {
	l := &PublicLimiter{
		enabled: cfg.RateLimit.Enabled,
		rule:    Rule{Rate: cfg.RateLimit.Rate, Burst: cfg.RateLimit.Burst},
		local:   NewLocalLimiter(),
		log:     log.Named("ratelimit"),
	}
	if bucket != nil {
		l.shared = bucket
	}
	if l.enabled && l.rule.validate() != nil {
		l.log.Warn("invalid public rate limit, limiter disabled",
			zap.Float64("rate", l.rule.Rate),
			zap.Int("burst", l.rule.Burst),
		)
		l.enabled = false
	}
	return l
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PublicLimiter) AllowClient(ctx context.Context, endpoint, clientIP string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyPublicEndpoint, strings.TrimSpace(endpoint), strings.TrimSpace(clientIP))
	if l.shared != nil {
		res, err := l.shared.Allow(ctx, key, l.rule)
		if err == nil {
			return res, nil
		}
		l.log.Warn("shared rate limiter unavailable, using local buckets", zap.Error(err))
	}
	return l.local.Allow(ctx, key, l.rule)
}
