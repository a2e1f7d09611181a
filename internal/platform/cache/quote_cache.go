package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

const (
	DefaultHistoricalTTL = 24 * time.Hour
	DefaultRefreshHour   = 18
)

// QuoteCacheOptions tunes CachingQuoteSource. Zero values take defaults.
type QuoteCacheOptions struct {
	HistoricalTTL time.Duration    // TTL for ranges that ended before today
	RefreshHour   int              // Hour (Asia/Shanghai) when today's bars settle
	Namespace     string           // Key prefix, "quotes" by default
	Now           func() time.Time // Clock, time.Now by default
}

// CachingQuoteSource decorates a QuoteSource with Redis caching.
// Only successful fetches are stored.
type CachingQuoteSource struct {
	inner repository.QuoteSource
	rdb   *redis.Client
	opts  QuoteCacheOptions
}

var _ repository.QuoteSource = (*CachingQuoteSource)(nil)

// NewCachingQuoteSource returns a caching decorator. A nil rdb disables caching.
func NewCachingQuoteSource(rdb *redis.Client, inner repository.QuoteSource, opts QuoteCacheOptions) *CachingQuoteSource {
	if opts.HistoricalTTL <= 0 {
		opts.HistoricalTTL = DefaultHistoricalTTL
	}
	if opts.RefreshHour <= 0 || opts.RefreshHour > 23 {
		opts.RefreshHour = DefaultRefreshHour
	}
	if opts.Namespace == "" {
		opts.Namespace = "quotes"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CachingQuoteSource{inner: inner, rdb: rdb, opts: opts}
}

// FetchBars serves q from Redis when possible and falls back to the inner source.
func (c *CachingQuoteSource) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	if c.rdb == nil {
		return c.inner.FetchBars(ctx, q)
	}

	key := c.cacheKey(q)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Bar
		if err := json.Unmarshal(b, &out); err == nil {
			for i := range out {
				out[i].Time = entity.DateOf(out[i].Time)
			}
			return out, nil
		}
		slog.Warn("dropping corrupted cache entry", "key", key)
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			slog.Warn("failed to delete cache entry", "key", key, "error", err)
		}
	}

	out, err := c.inner.FetchBars(ctx, q)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl(q)).Err(); err != nil {
			slog.Warn("failed to store quotes in cache", "key", key, "error", err)
		}
	}
	return out, nil
}

// ttl keeps closed ranges for HistoricalTTL and ranges touching today until the next refresh.
func (c *CachingQuoteSource) ttl(q entity.Query) time.Duration {
	now := c.opts.Now()
	if entity.DateOf(q.End).Before(entity.Today(now)) {
		return c.opts.HistoricalTTL
	}
	return TimeUntilNextRefresh(now, c.opts.RefreshHour)
}

func (c *CachingQuoteSource) cacheKey(q entity.Query) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		c.opts.Namespace,
		safe(q.Code.String()),
		safe(string(q.Frequency)),
		safe(string(q.Adjust)),
		q.Start.Format(entity.DateLayout),
		q.End.Format(entity.DateLayout),
	)
}
