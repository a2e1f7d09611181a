// Package usecase はKDJ指標の計算ユースケースを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	"kline_service/internal/feature/indicator/domain/kdj"
	"kline_service/internal/feature/indicator/domain/resample"
)

const (
	// DefaultLookbackDays is the daily history fetched for daily and weekly KDJ.
	DefaultLookbackDays = 180
	// MonthlyLookbackYears is the daily history fetched for monthly KDJ.
	MonthlyLookbackYears = 3
	// Places is the rounding applied to reported values.
	Places = 2
)

// Latest is the most recent KDJ reading of a security.
type Latest struct {
	Code      string
	Frequency entity.Frequency
	kdj.Reading
}

// SeriesInput selects a KDJ series. Zero Start, End or Params fields take their defaults.
type SeriesInput struct {
	Code      string
	Frequency entity.Frequency
	Start     time.Time
	End       time.Time
	Params    kdj.Params
}

// Series is a full KDJ series aligned with the resampled bars.
type Series struct {
	Code      string
	Frequency entity.Frequency
	Params    kdj.Params
	Values    []kdj.Reading
}

// indicatorUsecase computes KDJ from forward-adjusted daily bars.
type indicatorUsecase struct {
	source repository.QuoteSource
	now    func() time.Time
}

// NewIndicatorUsecase は indicatorUsecase の新しいインスタンスを生成します。
// now が nil の場合は time.Now を使用します。
func NewIndicatorUsecase(source repository.QuoteSource, now func() time.Time) *indicatorUsecase {
	if now == nil {
		now = time.Now
	}
	return &indicatorUsecase{source: source, now: now}
}

// LatestKDJ returns the KDJ of the most recent freq period, computed with the default parameters.
func (u *indicatorUsecase) LatestKDJ(ctx context.Context, code string, freq entity.Frequency) (*Latest, error) {
	s, err := u.Series(ctx, SeriesInput{Code: code, Frequency: freq})
	if err != nil {
		return nil, err
	}
	last := s.Values[len(s.Values)-1]
	return &Latest{Code: s.Code, Frequency: freq, Reading: last}, nil
}

// Series returns the KDJ of every freq period in the input range.
func (u *indicatorUsecase) Series(ctx context.Context, in SeriesInput) (*Series, error) {
	c, err := entity.ParseCode(in.Code)
	if err != nil {
		return nil, err
	}
	if _, err := entity.ParseFrequency(string(in.Frequency)); err != nil {
		return nil, err
	}
	params := withDefaults(in.Params)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	end := in.End
	if end.IsZero() {
		end = entity.Today(u.now())
	}
	end = entity.DateOf(end)
	start := in.Start
	if start.IsZero() {
		start = lookbackStart(end, in.Frequency)
	}
	q := entity.Query{
		Code:      c,
		Frequency: entity.Daily,
		Adjust:    entity.AdjustForward,
		Start:     entity.DateOf(start),
		End:       end,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	daily, err := u.source.FetchBars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", c, err)
	}
	bars, err := resample.Resample(daily, in.Frequency)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, domain.ErrNoData
	}

	values, err := kdj.Calculate(bars, params, kdj.Neutral)
	if err != nil {
		return nil, err
	}
	slog.Debug("kdj computed", "code", c.String(), "frequency", in.Frequency, "daily_bars", len(daily), "periods", len(bars))

	out := make([]kdj.Reading, len(values))
	for i, v := range values {
		out[i] = kdj.Round(v, Places)
	}
	return &Series{Code: c.String(), Frequency: in.Frequency, Params: params, Values: out}, nil
}

func lookbackStart(end time.Time, freq entity.Frequency) time.Time {
	if freq == entity.Monthly {
		return end.AddDate(-MonthlyLookbackYears, 0, 0)
	}
	return end.AddDate(0, 0, -DefaultLookbackDays)
}

func withDefaults(p kdj.Params) kdj.Params {
	if p.N == 0 {
		p.N = kdj.DefaultParams.N
	}
	if p.M1 == 0 {
		p.M1 = kdj.DefaultParams.M1
	}
	if p.M2 == 0 {
		p.M2 = kdj.DefaultParams.M2
	}
	return p
}
