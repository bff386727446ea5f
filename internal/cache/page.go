package cache

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

// PageCache is the capability handed to handlers that cache whole rendered
// responses. There are deliberately no invalidation hooks: entries live until
// their TTL elapses, even when the underlying records change.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration)
}

type redisPageCache struct {
	client *redis.Client
	prefix string
}

// NewPageCache returns a Redis-backed PageCache. A nil client yields a cache
// that always misses, so handlers degrade to uncached rendering.
func NewPageCache(client *redis.Client, prefix string) PageCache {
	return &redisPageCache{client: client, prefix: prefix}
}

func (p *redisPageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if p.client == nil {
		return nil, false
	}
	b, err := p.client.Get(ctx, p.prefix+":"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("get").Inc()
		}
		observability.PageCacheMisses.WithLabelValues(p.prefix).Inc()
		return nil, false
	}
	observability.PageCacheHits.WithLabelValues(p.prefix).Inc()
	return b, true
}

func (p *redisPageCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if p.client == nil {
		return
	}
	// Best-effort: a failed write only costs a future cache miss.
	if err := p.client.Set(ctx, p.prefix+":"+key, body, ttl).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("set").Inc()
	}
}
