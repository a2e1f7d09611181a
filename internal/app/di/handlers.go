package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kline_service/internal/app/config"
	"kline_service/internal/app/router"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	archiveadapters "kline_service/internal/feature/archive/adapters"
	archivehandler "kline_service/internal/feature/archive/transport/handler"
	archiveusecase "kline_service/internal/feature/archive/usecase"
	backtesthandler "kline_service/internal/feature/backtest/transport/handler"
	backtestusecase "kline_service/internal/feature/backtest/usecase"
	candlestickhandler "kline_service/internal/feature/candlestick/transport/handler"
	candlestickusecase "kline_service/internal/feature/candlestick/usecase"
	indicatorhandler "kline_service/internal/feature/indicator/transport/handler"
	indicatorusecase "kline_service/internal/feature/indicator/usecase"
	symbollistadapters "kline_service/internal/feature/symbollist/adapters"
	symbollisthandler "kline_service/internal/feature/symbollist/transport/handler"
	symbollistusecase "kline_service/internal/feature/symbollist/usecase"
	"kline_service/internal/platform/cache"
	"kline_service/internal/platform/jobstate"
)

// NewIngestUsecase creates the archive ingest over quotes, the bar store and the symbol list.
func NewIngestUsecase(cfg *config.Config, quotes repository.QuoteSource, store repository.BarStore, db *gorm.DB) *archiveusecase.IngestUsecase {
	symbolUC := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db))
	return archiveusecase.NewIngestUsecase(quotes, store, symbolUC,
		archiveusecase.WithAdjust(entity.AdjustFlag(cfg.Ingest.Adjust)),
		archiveusecase.WithLookbackDays(cfg.Ingest.LookbackDays),
	)
}

// NewBarStore creates the gorm bar store behind the Redis read cache.
func NewBarStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) repository.BarStore {
	if !cfg.Cache.Enabled {
		rdb = nil
	}
	return cache.NewCachingBarStore(rdb, cfg.Cache.ArchiveTTL, archiveadapters.NewBarRepository(db), "archive")
}

// NewHandlers creates every feature handler. A nil db leaves the archive and symbol
// handlers nil, and the returned ingest job is nil as well.
func NewHandlers(cfg *config.Config, quotes repository.QuoteSource, db *gorm.DB, rdb *redis.Client) (router.Handlers, jobstate.RunFunc) {
	h := router.Handlers{
		Candlestick: candlestickhandler.NewCandlestickHandler(candlestickusecase.NewCandlestickUsecase(quotes)),
		Indicator:   indicatorhandler.NewIndicatorHandler(indicatorusecase.NewIndicatorUsecase(quotes, time.Now)),
		Backtest:    backtesthandler.NewBacktestHandler(backtestusecase.NewBacktestUsecase(quotes, time.Now)),
	}
	if db == nil {
		return h, nil
	}

	store := NewBarStore(cfg, db, rdb)
	h.Archive = archivehandler.NewArchiveHandler(archiveusecase.NewArchiveUsecase(store))
	h.Symbol = symbollisthandler.NewSymbolHandler(symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db)))

	ingest, history := NewIngestJob(rdb, NewIngestUsecase(cfg, quotes, store, db).Run, cfg.Ingest.Timeout)
	h.Ingest = archivehandler.NewIngestHandler(IngestJobName, ingest, history, cfg.Ingest.Timeout)
	return h, ingest
}
