// Package di provides dependency injection factories for creating application components.
package di

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	"kline_service/internal/app/config"
	"kline_service/internal/domain/repository"
	"kline_service/internal/platform/cache"
	"kline_service/internal/platform/externalapi/twelvedata"
	"kline_service/internal/platform/externalapi/yahoo"
	infrahttp "kline_service/internal/platform/http"
	"kline_service/internal/platform/retry"
	"kline_service/internal/shared/ratelimiter"
)

// NewProvider creates the configured upstream quote provider with its HTTP client.
func NewProvider(cfg config.UpstreamConfig) repository.QuoteSource {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return newProvider(cfg, httpClient)
}

func newProvider(cfg config.UpstreamConfig, httpClient *http.Client) repository.QuoteSource {
	if cfg.Provider == config.ProviderTwelveData {
		td := twelvedata.LoadConfig()
		if cfg.BaseURL != "" {
			td.BaseURL = cfg.BaseURL
		}
		if cfg.APIKey != "" {
			td.APIKey = cfg.APIKey
		}
		td.Timeout = cfg.Timeout
		return twelvedata.NewTwelveDataMarket(td, httpClient)
	}
	return yahoo.NewClient(yahoo.Config{BaseURL: cfg.BaseURL, UserAgent: cfg.UserAgent}, httpClient)
}

// NewQuoteSource wraps provider with rate limiting, retries and the Redis cache, in that
// order from the inside out. A nil rdb or a disabled cache skips caching.
func NewQuoteSource(cfg *config.Config, provider repository.QuoteSource, rdb *redis.Client) repository.QuoteSource {
	limiter := ratelimiter.NewRateLimiter(cfg.Upstream.RateLimit, cfg.Upstream.RateInterval, cfg.Upstream.RateBurst)
	var src repository.QuoteSource = ratelimiter.NewSource(provider, limiter)
	src = retry.NewSource(src, retry.Config{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		AttemptTimeout:  cfg.Retry.AttemptTimeout,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	})
	if !cfg.Cache.Enabled {
		rdb = nil
	}
	return cache.NewCachingQuoteSource(rdb, src, cache.QuoteCacheOptions{
		HistoricalTTL: cfg.Cache.HistoricalTTL,
		RefreshHour:   cfg.Cache.RefreshHour,
	})
}
