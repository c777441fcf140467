package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrLockKeyEmpty   = errors.New("lock_key_empty")
	ErrLockTTLInvalid = errors.New("lock_ttl_invalid")
)

// compare-and-delete so an expired holder cannot drop a successor's lock
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker keeps one confirmation sweep running at a time across the monolith
// and notifier instances that share a Redis. It shares the client used for
// the public rate limits. A nil Locker grants every lock, which is right for
// a single instance deployment.
type Locker struct {
	client    redis.UniversalClient
	nextToken func() string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, nextToken: uuid.NewString}
}

// TryLock claims key for ttl and returns the token needed to release it.
// acquired is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error) {
	if l == nil {
		return "", true, nil
	}
	switch {
	case key == "":
		return "", false, ErrLockKeyEmpty
	case ttl <= 0:
		return "", false, ErrLockTTLInvalid
	}

	token = l.nextToken()
	status, err := l.client.SetArgs(ctx, key, token, redis.SetArgs{Mode: "NX", TTL: ttl}).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, status == "OK", nil
}

// Release is a no-op unless token still owns key.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || key == "" || token == "" {
		return nil
	}
	return releaseIfOwner.Run(ctx, l.client, []string{key}, token).Err()
}
