// Package retry は株価ソースに試行ごとのタイムアウトと回数制限付きリトライを付与します。
package retry

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

const (
	DefaultMaxAttempts     = 3
	DefaultAttemptTimeout  = 60 * time.Second
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
)

// Config はリトライ方針を表します。ゼロ値のフィールドには上記のデフォルトが適用されます。
type Config struct {
	MaxAttempts     int
	AttemptTimeout  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	return c
}

// Source は一時的な失敗時に内側のソースを再試行するデコレータです。
type Source struct {
	inner repository.QuoteSource
	cfg   Config
}

var _ repository.QuoteSource = (*Source)(nil)

// NewSource はcfgのリトライ方針でinnerをラップしたSourceを生成します。
func NewSource(inner repository.QuoteSource, cfg Config) *Source {
	return &Source{inner: inner, cfg: cfg.withDefaults()}
}

// FetchBars は内側のソースを最大MaxAttempts回呼び出します。
// 各試行にはAttemptTimeoutが個別に適用され、すべて失敗した場合は最後のエラーを返します。
func (s *Source) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	attempt := 0
	op := func() ([]entity.Bar, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		defer cancel()

		bars, err := s.inner.FetchBars(actx, q)
		if err == nil {
			return bars, nil
		}
		if !Retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		slog.Warn("quote fetch attempt failed",
			"code", q.Code.String(),
			"frequency", q.Frequency,
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
			"error", err,
		)
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)
	return backoff.RetryWithData(op, policy)
}

// Retryable は、親コンテキストが有効な間にerrを再試行すべきかどうかを返します。
func Retryable(parent context.Context, err error) bool {
	if err == nil || parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Temporary()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
