// Package ratelimiter throttles calls to upstream quote providers.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter is a token bucket shared by every caller of one provider.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows limit calls per interval with the given burst.
// A non-positive limit disables throttling.
func NewRateLimiter(limit int, interval time.Duration, burst int) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst <= 0 {
		burst = 1
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate limiter: burst exceeded")
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	slog.Debug("rate limit reached, waiting", "delay", delay)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Source waits on a limiter before each call to the inner source.
type Source struct {
	inner   repository.QuoteSource
	limiter RateLimiterInterface
}

var _ repository.QuoteSource = (*Source)(nil)

// NewSource wraps inner with limiter.
func NewSource(inner repository.QuoteSource, limiter RateLimiterInterface) *Source {
	return &Source{inner: inner, limiter: limiter}
}

func (s *Source) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.FetchBars(ctx, q)
}
