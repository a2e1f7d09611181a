package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	"kline_service/internal/feature/indicator/domain/kdj"
)

// 2024-06-28 (Fri) 16:00 in Shanghai
var fixedNow = time.Date(2024, 6, 28, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// rising returns n consecutive weekday bars ending at end with steadily rising closes.
func rising(end time.Time, n int) []entity.Bar {
	out := make([]entity.Bar, 0, n)
	for d := end; len(out) < n; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, entity.Bar{Code: "sh.600000", Frequency: entity.Daily, Adjust: entity.AdjustForward, Time: d})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	for i := range out {
		p := 10 + float64(i)*0.1
		out[i].Open, out[i].High, out[i].Low, out[i].Close = p, p+0.05, p-0.05, p
	}
	return out
}

func TestIndicatorUsecase_LatestKDJ(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 6, 28, 0, 0, 0, 0, entity.Shanghai)

	tests := []struct {
		name      string
		freq      entity.Frequency
		wantStart time.Time
		wantDate  time.Time
	}{
		{name: "weekly", freq: entity.Weekly, wantStart: today.AddDate(0, 0, -180), wantDate: time.Date(2024, 6, 30, 0, 0, 0, 0, entity.Shanghai)},
		{name: "daily", freq: entity.Daily, wantStart: today.AddDate(0, 0, -180), wantDate: today},
		{name: "monthly", freq: entity.Monthly, wantStart: today.AddDate(-3, 0, 0), wantDate: time.Date(2024, 6, 30, 0, 0, 0, 0, entity.Shanghai)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got entity.Query
			src := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
				got = q
				return rising(q.End, 700), nil
			})

			latest, err := NewIndicatorUsecase(src, clock).LatestKDJ(context.Background(), "sh.600000", tt.freq)
			require.NoError(t, err)

			assert.Equal(t, entity.Daily, got.Frequency)
			assert.Equal(t, entity.AdjustForward, got.Adjust)
			assert.Equal(t, today, got.End)
			assert.Equal(t, tt.wantStart, got.Start)

			assert.Equal(t, "sh.600000", latest.Code)
			assert.Equal(t, tt.freq, latest.Frequency)
			assert.True(t, tt.wantDate.Equal(latest.Time), "got %v", latest.Time)
			require.NotNil(t, latest.K)
			require.NotNil(t, latest.D)
			require.NotNil(t, latest.J)
			// A steady uptrend keeps the close near the top of every window.
			assert.Greater(t, *latest.K, 80.0)
		})
	}
}

func TestIndicatorUsecase_LatestKDJ_WarmUp(t *testing.T) {
	t.Parallel()

	// Five daily bars make a single week: too short for a 9-period window.
	src := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
		return rising(q.End, 5), nil
	})

	latest, err := NewIndicatorUsecase(src, clock).LatestKDJ(context.Background(), "sh.600000", entity.Weekly)
	require.NoError(t, err)
	assert.Nil(t, latest.K)
	assert.Nil(t, latest.D)
	assert.Nil(t, latest.J)
}

func TestIndicatorUsecase_LatestKDJ_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		fetch   func(context.Context, entity.Query) ([]entity.Bar, error)
		wantErr error
	}{
		{name: "invalid code", code: "600000", wantErr: domain.ErrInvalidCode},
		{
			name: "no data", code: "sh.600000",
			fetch:   func(context.Context, entity.Query) ([]entity.Bar, error) { return nil, domain.ErrNoData },
			wantErr: domain.ErrNoData,
		},
		{
			name: "empty result", code: "sh.600000",
			fetch:   func(context.Context, entity.Query) ([]entity.Bar, error) { return []entity.Bar{}, nil },
			wantErr: domain.ErrNoData,
		},
		{
			name: "timeout", code: "sh.600000",
			fetch:   func(context.Context, entity.Query) ([]entity.Bar, error) { return nil, context.DeadlineExceeded },
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
				if tt.fetch == nil {
					return nil, errors.New("unexpected fetch")
				}
				return tt.fetch(ctx, q)
			})
			_, err := NewIndicatorUsecase(src, clock).LatestKDJ(context.Background(), tt.code, entity.Weekly)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIndicatorUsecase_Series(t *testing.T) {
	t.Parallel()

	var got entity.Query
	src := repository.QuoteSourceFunc(func(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
		got = q
		return rising(q.End, 20), nil
	})
	uc := NewIndicatorUsecase(src, clock)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	s, err := uc.Series(context.Background(), SeriesInput{
		Code: "sz.000001", Frequency: entity.Daily, Start: start, End: end, Params: kdj.Params{N: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, entity.Shanghai), got.Start)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, entity.Shanghai), got.End)

	assert.Equal(t, "sz.000001", s.Code)
	assert.Equal(t, kdj.Params{N: 5, M1: 3, M2: 3}, s.Params)
	require.Len(t, s.Values, 20)
	for i := 0; i < 4; i++ {
		assert.Nil(t, s.Values[i].K, "warm-up value %d", i)
	}
	assert.NotNil(t, s.Values[4].K)
}

func TestIndicatorUsecase_Series_InvalidInput(t *testing.T) {
	t.Parallel()

	src := repository.QuoteSourceFunc(func(context.Context, entity.Query) ([]entity.Bar, error) {
		return nil, errors.New("unexpected fetch")
	})
	uc := NewIndicatorUsecase(src, clock)

	_, err := uc.Series(context.Background(), SeriesInput{Code: "sh.600000", Frequency: entity.Daily, Params: kdj.Params{N: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = uc.Series(context.Background(), SeriesInput{
		Code: "sh.600000", Frequency: entity.Weekly,
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = uc.Series(context.Background(), SeriesInput{Code: "sh.600000", Frequency: entity.Frequency("y")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}
