package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// RedisLimiter shares per-key windows across processes. Each window is a
// key set with NX and a TTL of minInterval.
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	minInterval time.Duration
}

func NewRedis(client *redis.Client, prefix string, minInterval time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		prefix:      prefix,
		minInterval: minInterval,
	}
}

// Allow claims the window for key. Redis errors allow the call through so a
// cache outage never blocks readers.
func (l *RedisLimiter) Allow(key string) bool {
	return l.claim(context.Background(), key)
}

// Wait polls until the window for key expires and is claimed, or ctx ends.
func (l *RedisLimiter) Wait(ctx context.Context, key string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.claim(ctx, key) {
			return nil
		}

		timer := time.NewTimer(l.remaining(ctx, key))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

func (l *RedisLimiter) claim(ctx context.Context, key string) bool {
	if l.minInterval <= 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	ok, err := l.client.SetNX(ctx, l.prefix+key, time.Now().UnixMilli(), l.minInterval).Result()
	if err != nil {
		return true
	}
	return ok
}

func (l *RedisLimiter) remaining(ctx context.Context, key string) time.Duration {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	ttl, err := l.client.PTTL(ctx, l.prefix+key).Result()
	if err != nil || ttl <= 0 {
		return 10 * time.Millisecond
	}
	return ttl
}
