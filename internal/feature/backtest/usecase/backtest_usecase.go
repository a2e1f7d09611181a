// Package usecase はKDJバックテストのユースケースを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	"kline_service/internal/feature/backtest/domain/strategy"
	"kline_service/internal/feature/indicator/domain/kdj"
)

// Input selects the security, the weekly range and the strategy parameters.
// A zero End means today.
type Input struct {
	Code   string
	Start  time.Time
	End    time.Time
	Config strategy.Config
}

// backtestUsecase runs the KDJ strategy over forward-adjusted weekly bars.
type backtestUsecase struct {
	source repository.QuoteSource
	now    func() time.Time
}

// NewBacktestUsecase は backtestUsecase の新しいインスタンスを生成します。
func NewBacktestUsecase(source repository.QuoteSource, now func() time.Time) *backtestUsecase {
	if now == nil {
		now = time.Now
	}
	return &backtestUsecase{source: source, now: now}
}

// RunKDJ fetches weekly bars and simulates the strategy on them.
func (u *backtestUsecase) RunKDJ(ctx context.Context, in Input) (*strategy.Result, error) {
	c, err := entity.ParseCode(in.Code)
	if err != nil {
		return nil, err
	}
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	if in.Start.IsZero() {
		return nil, fmt.Errorf("%w: start_date is required", domain.ErrInvalidQuery)
	}
	end := in.End
	if end.IsZero() {
		end = entity.Today(u.now())
	}
	q := entity.Query{
		Code:      c,
		Frequency: entity.Weekly,
		Adjust:    entity.AdjustForward,
		Start:     entity.DateOf(in.Start),
		End:       entity.DateOf(end),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	bars, err := u.source.FetchBars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch weekly bars for %s: %w", c, err)
	}
	values, err := kdj.Calculate(bars, kdj.DefaultParams, kdj.PartialWindow)
	if err != nil {
		return nil, err
	}
	res, err := strategy.Simulate(bars, values, in.Config)
	if err != nil {
		return nil, err
	}
	slog.Info("backtest finished", "code", c.String(), "bars", len(bars), "trades", len(res.Trades),
		"return_pct", res.Summary.ReturnPct.String())
	return res, nil
}
