package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/localpress/localpress/internal/cache"
	"github.com/localpress/localpress/internal/logging"
)

// CachedProvider serves repeated searches from a cache so that popular zip
// codes do not spend the provider's daily request quota. Only successful
// responses are cached.
type CachedProvider struct {
	next   Provider
	cache  cache.Cache
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedProvider(next Provider, c cache.Cache, ttl time.Duration, logger *logging.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (p *CachedProvider) Name() string {
	return p.next.Name()
}

func (p *CachedProvider) Search(ctx context.Context, q Query) ([]Record, error) {
	key := p.cacheKey(q)

	if data, ok := p.cache.Get(ctx, key); ok {
		var records []Record
		if err := json.Unmarshal(data, &records); err == nil {
			p.logger.Debug("Provider cache hit", logging.WithFields(map[string]interface{}{
				"provider": p.next.Name(),
				"term":     q.Q,
			}))
			return records, nil
		}
		p.cache.Delete(ctx, key)
	}

	records, err := p.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		p.cache.Set(ctx, key, data, p.ttl)
	}
	return records, nil
}

func (p *CachedProvider) cacheKey(q Query) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%d",
		strings.ToLower(strings.TrimSpace(q.Q)),
		strings.Join(q.Categories, ","),
		q.Country,
		q.Timeframe,
		q.Size,
	)
	sum := sha256.Sum256([]byte(raw))
	return p.next.Name() + ":" + hex.EncodeToString(sum[:12])
}
