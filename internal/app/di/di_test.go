package di

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline_service/internal/app/config"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	"kline_service/internal/platform/cache"
	"kline_service/internal/platform/db"
	"kline_service/internal/platform/externalapi/twelvedata"
	"kline_service/internal/platform/externalapi/yahoo"
)

func TestNewProvider(t *testing.T) {
	t.Parallel()

	yc := newProvider(config.UpstreamConfig{Provider: config.ProviderYahoo}, http.DefaultClient)
	assert.IsType(t, &yahoo.Client{}, yc)

	td := newProvider(config.UpstreamConfig{Provider: config.ProviderTwelveData, APIKey: "k"}, http.DefaultClient)
	assert.IsType(t, &twelvedata.TwelveDataMarket{}, td)

	assert.NotNil(t, NewProvider(config.UpstreamConfig{Timeout: time.Second}))
}

func TestNewQuoteSource_PassesThroughChain(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
		calls.Add(1)
		return []entity.Bar{{Code: q.Code.String(), Time: q.Start, Close: 1}}, nil
	})

	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	src := NewQuoteSource(cfg, provider, nil)
	require.IsType(t, &cache.CachingQuoteSource{}, src)

	code, err := entity.ParseCode("sh.600000")
	require.NoError(t, err)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, entity.Shanghai)
	bars, err := src.FetchBars(context.Background(), entity.Query{Code: code, Frequency: entity.Daily, Adjust: entity.AdjustNone, Start: day, End: day})
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewIngestJob_WithoutRedis(t *testing.T) {
	t.Parallel()

	var called bool
	run, history := NewIngestJob(nil, func(context.Context) (int, error) {
		called = true
		return 2, nil
	}, time.Minute)

	assert.Nil(t, history)
	n, err := run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, called)
}

func TestNewHandlers(t *testing.T) {
	t.Parallel()

	quotes := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
		return nil, nil
	})
	cfg := &config.Config{}
	cfg.Ingest.Adjust = "3"

	t.Run("without database", func(t *testing.T) {
		t.Parallel()
		h, ingest := NewHandlers(cfg, quotes, nil, nil)
		assert.NotNil(t, h.Candlestick)
		assert.NotNil(t, h.Indicator)
		assert.NotNil(t, h.Backtest)
		assert.Nil(t, h.Archive)
		assert.Nil(t, h.Symbol)
		assert.Nil(t, h.Ingest)
		assert.Nil(t, ingest)
	})

	t.Run("with database", func(t *testing.T) {
		t.Parallel()
		gdb, err := db.Open(db.Config{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "kline.db"), Migrate: true})
		require.NoError(t, err)

		h, ingest := NewHandlers(cfg, quotes, gdb, nil)
		assert.NotNil(t, h.Archive)
		assert.NotNil(t, h.Symbol)
		assert.NotNil(t, h.Ingest)
		require.NotNil(t, ingest)

		// No symbols registered yet.
		n, err := ingest(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
