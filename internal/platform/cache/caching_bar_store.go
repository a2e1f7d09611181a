// Package cache provides Redis caching decorators for quote sources and bar stores.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

// CachingBarStore decorates a BarStore with Redis caching.
// Reads are cached per (code, frequency, adjust, limit). Writes invalidate every
// cached limit for the affected series.
type CachingBarStore struct {
	inner     repository.BarStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ repository.BarStore = (*CachingBarStore)(nil)

// NewCachingBarStore decorates a BarStore with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "archive".
func NewCachingBarStore(rdb *redis.Client, ttl time.Duration, inner repository.BarStore, namespace string) *CachingBarStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "archive"
	}
	return &CachingBarStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes bars to the inner store and invalidates related cache entries.
func (c *CachingBarStore) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	if err := c.inner.UpsertBatch(ctx, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, b := range bars {
		prefix := c.cacheKeyPrefix(b.Code, b.Frequency, b.Adjust)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			slog.Warn("failed to invalidate archive cache", "pattern", prefix+"*", "error", err)
		}
	}
	return nil
}

// Find returns cached bars or loads them from the inner store.
func (c *CachingBarStore) Find(ctx context.Context, code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) ([]entity.Bar, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, code, freq, adjust, limit)
	}

	key := c.cacheKey(code, freq, adjust, limit)

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

	out, err := c.inner.Find(ctx, code, freq, adjust, limit)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("failed to store bars in cache", "key", key, "error", err)
		}
	}
	return out, nil
}

func (c *CachingBarStore) cacheKey(code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) string {
	return fmt.Sprintf("%s%d", c.cacheKeyPrefix(code, freq, adjust), limit)
}

func (c *CachingBarStore) cacheKeyPrefix(code string, freq entity.Frequency, adjust entity.AdjustFlag) string {
	return fmt.Sprintf("%s:%s:%s:%s:",
		c.namespace,
		safe(code),
		safe(string(freq)),
		safe(string(adjust)),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBarStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
