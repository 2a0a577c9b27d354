// Package cache stores encoded provider responses for a limited time.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store for encoded values. A miss and a backend
// failure both report ok=false.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
