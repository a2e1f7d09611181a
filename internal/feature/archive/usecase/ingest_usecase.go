package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

// DefaultLookbackDays is how far back each ingest run refetches.
const DefaultLookbackDays = 400

// ingestFrequencies はデータ取得の対象となる時間足のリストです。
var ingestFrequencies = []entity.Frequency{entity.Daily, entity.Weekly, entity.Monthly}

// SymbolLister returns the codes the ingest job should archive.
type SymbolLister interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースを定義します。
type IngestUsecase struct {
	source       repository.QuoteSource
	store        repository.BarStore
	symbols      SymbolLister
	adjust       entity.AdjustFlag
	lookbackDays int
	now          func() time.Time
}

// IngestOption customises an IngestUsecase.
type IngestOption func(*IngestUsecase)

// WithAdjust sets the adjust flag archived for every bar. Defaults to unadjusted.
func WithAdjust(a entity.AdjustFlag) IngestOption {
	return func(u *IngestUsecase) { u.adjust = a }
}

// WithLookbackDays sets the refetch window.
func WithLookbackDays(days int) IngestOption {
	return func(u *IngestUsecase) {
		if days > 0 {
			u.lookbackDays = days
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) IngestOption {
	return func(u *IngestUsecase) { u.now = now }
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(source repository.QuoteSource, store repository.BarStore, symbols SymbolLister, opts ...IngestOption) *IngestUsecase {
	u := &IngestUsecase{
		source:       source,
		store:        store,
		symbols:      symbols,
		adjust:       entity.AdjustNone,
		lookbackDays: DefaultLookbackDays,
		now:          time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// ingestOne fetches one series over the lookback window and upserts it.
func (iu *IngestUsecase) ingestOne(ctx context.Context, code entity.Code, freq entity.Frequency) (int, error) {
	end := entity.Today(iu.now())
	q := entity.Query{
		Code:      code,
		Frequency: freq,
		Adjust:    iu.adjust,
		Start:     end.AddDate(0, 0, -iu.lookbackDays),
		End:       end,
	}
	bars, err := iu.source.FetchBars(ctx, q)
	if err != nil {
		return 0, err
	}
	if err := iu.store.UpsertBatch(ctx, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// IngestAll archives every frequency of every code and returns the number of bars stored.
// A failing series is logged and skipped. Only context cancellation stops the run early.
func (iu *IngestUsecase) IngestAll(ctx context.Context, codes []string) (int, error) {
	total := 0
	for _, s := range codes {
		code, err := entity.ParseCode(s)
		if err != nil {
			slog.Warn("skipping symbol with invalid code", "code", s, "error", err)
			continue
		}
		for _, freq := range ingestFrequencies {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			n, err := iu.ingestOne(ctx, code, freq)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return total, err
				}
				level := slog.LevelError
				if errors.Is(err, domain.ErrNoData) {
					level = slog.LevelWarn
				}
				// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の処理を続ける
				slog.Log(ctx, level, "failed to ingest data", "code", s, "frequency", freq, "error", err)
				continue
			}
			total += n
		}
	}
	return total, nil
}

// Run archives every active symbol.
func (iu *IngestUsecase) Run(ctx context.Context) (int, error) {
	codes, err := iu.symbols.ListActiveCodes(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := iu.IngestAll(ctx, codes)
	slog.Info("ingest finished", "symbols", len(codes), "bars", n, "elapsed", time.Since(start))
	return n, err
}
