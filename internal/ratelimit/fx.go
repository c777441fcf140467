package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/voltshop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(provideTokenBucket),
	fx.Provide(NewLocker),
	fx.Provide(NewPublicLimiter),
)

// NewRedisClient returns nil when REDIS_ADDR is unset; consumers treat a nil
// client as "run without shared state".
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		log.Info("redis not configured, rate limits and sweep locks are per instance")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func provideTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return NewTokenBucket(client)
}
