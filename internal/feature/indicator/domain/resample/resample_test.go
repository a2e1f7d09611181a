package resample_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/indicator/domain/resample"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, entity.Shanghai)
}

func daily() []entity.Bar {
	mk := func(t time.Time, o, h, l, c float64, v int64) entity.Bar {
		return entity.Bar{Code: "sz.000001", Frequency: entity.Daily, Adjust: entity.AdjustForward, Time: t,
			Open: o, High: h, Low: l, Close: c, Volume: v, Amount: float64(v) * c}
	}
	return []entity.Bar{
		mk(day(1, 2), 10, 11, 9, 10.5, 100),  // Tue
		mk(day(1, 5), 10.5, 12, 10, 11, 200), // Fri
		mk(day(1, 8), 11, 11.5, 10.2, 10.8, 150),
		mk(day(1, 31), 9, 9.5, 8.5, 9.2, 300),
		mk(day(2, 1), 9.2, 9.8, 9.1, 9.6, 250),
	}
}

func TestResample_Weekly(t *testing.T) {
	t.Parallel()

	got, err := resample.Resample(daily(), entity.Weekly)
	require.NoError(t, err)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, day(1, 7), first.Time)
	assert.Equal(t, entity.Weekly, first.Frequency)
	assert.Equal(t, entity.AdjustForward, first.Adjust)
	assert.Equal(t, "sz.000001", first.Code)
	assert.Equal(t, 10.0, first.Open)
	assert.Equal(t, 12.0, first.High)
	assert.Equal(t, 9.0, first.Low)
	assert.Equal(t, 11.0, first.Close)
	assert.Equal(t, int64(300), first.Volume)
	assert.InDelta(t, 100*10.5+200*11, first.Amount, 1e-9)

	assert.Equal(t, day(1, 14), got[1].Time)
	assert.Equal(t, day(2, 4), got[2].Time)
	assert.Equal(t, 9.0, got[2].Open)
	assert.Equal(t, 9.6, got[2].Close)
	assert.Equal(t, int64(550), got[2].Volume)
}

func TestResample_Monthly(t *testing.T) {
	t.Parallel()

	got, err := resample.Resample(daily(), entity.Monthly)
	require.NoError(t, err)
	require.Len(t, got, 2, "empty periods produce no bar")

	assert.Equal(t, day(1, 31), got[0].Time)
	assert.Equal(t, 10.0, got[0].Open)
	assert.Equal(t, 12.0, got[0].High)
	assert.Equal(t, 8.5, got[0].Low)
	assert.Equal(t, 9.2, got[0].Close)
	assert.Equal(t, int64(750), got[0].Volume)

	assert.Equal(t, day(2, 29), got[1].Time)
	assert.Equal(t, entity.Monthly, got[1].Frequency)
}

func TestResample_DailyAndInvalid(t *testing.T) {
	t.Parallel()

	in := daily()
	got, err := resample.Resample(in, entity.Daily)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	got, err = resample.Resample(nil, entity.Weekly)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = resample.Resample(in, entity.Frequency("y"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}
