package marketdata

import (
	"context"
	"time"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
	"github.com/wonny/riskscope/pkg/redis"
)

// CachedSource is a Redis read-through cache in front of another source.
// Cache failures are logged and fall through to the wrapped source.
type CachedSource struct {
	next  Source
	cache *redis.Cache
	ttl   time.Duration
	start string
}

// NewCachedSource wraps next with a Redis cache. start is part of the key so
// a change of HISTORY_START never serves a shorter cached history.
func NewCachedSource(next Source, cache *redis.Cache, ttl time.Duration, start time.Time, log *logger.Logger) *CachedSource {
	log = log.WithComponent("price-cache")
	cache.OnError(func(op, key string, err error) {
		log.WithError(err).WithFields(map[string]interface{}{
			"op":  op,
			"key": key,
		}).Warn("price cache unavailable")
	})

	return &CachedSource{
		next:  next,
		cache: cache,
		ttl:   ttl,
		start: start.Format("2006-01-02"),
	}
}

func (c *CachedSource) key(assetID string) string {
	return redis.Key("series", assetID, c.start)
}

// History implements Source
func (c *CachedSource) History(ctx context.Context, assetID string) ([]returns.Price, error) {
	prices, outcome, err := redis.Load(ctx, c.cache, c.key(assetID), c.ttl,
		func(p []returns.Price) bool { return len(p) > 0 },
		func(ctx context.Context) ([]returns.Price, error) {
			return c.next.History(ctx, assetID)
		},
	)
	metrics.CacheLookups.WithLabelValues("redis", string(outcome)).Inc()
	return prices, err
}

// Invalidate drops the cached history of an asset
func (c *CachedSource) Invalidate(ctx context.Context, assetID string) error {
	return c.cache.Delete(ctx, c.key(assetID))
}
