package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// RedisCache is a Cache shared by every instance pointed at the same Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. Keys are stored under prefix.
func NewRedis(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "localpress:cache:"
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	c.client.Set(ctx, c.key(key), value, ttl)
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	c.client.Del(ctx, c.key(key))
}

var _ Cache = (*RedisCache)(nil)
