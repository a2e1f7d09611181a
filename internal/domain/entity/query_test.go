package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline_service/internal/domain"
)

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{"d", Daily, false},
		{"daily", Daily, false},
		{"W", Weekly, false},
		{"weekly", Weekly, false},
		{"m", Monthly, false},
		{"monthly", Monthly, false},
		{"y", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFrequency(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAdjustFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    AdjustFlag
		wantErr bool
	}{
		{"", AdjustNone, false},
		{"3", AdjustNone, false},
		{"2", AdjustForward, false},
		{"1", AdjustBackward, false},
		{"4", "", true},
		{"qfq", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAdjustFlag(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_Validate(t *testing.T) {
	t.Parallel()

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, Shanghai)
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, Shanghai)

	assert.NoError(t, Query{Start: jan1, End: jan31}.Validate())
	assert.NoError(t, Query{Start: jan1, End: jan1}.Validate())
	assert.ErrorIs(t, Query{Start: jan31, End: jan1}.Validate(), domain.ErrInvalidQuery)
	assert.ErrorIs(t, Query{End: jan1}.Validate(), domain.ErrInvalidQuery)
}

func TestQuery_Contains(t *testing.T) {
	t.Parallel()

	q := Query{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, Shanghai),
		End:   time.Date(2024, 1, 5, 0, 0, 0, 0, Shanghai),
	}

	assert.True(t, q.Contains(time.Date(2024, 1, 2, 0, 0, 0, 0, Shanghai)))
	assert.True(t, q.Contains(time.Date(2024, 1, 5, 15, 0, 0, 0, Shanghai)))
	// 2024-01-04 20:00 UTC is 2024-01-05 04:00 in Shanghai.
	assert.True(t, q.Contains(time.Date(2024, 1, 4, 20, 0, 0, 0, time.UTC)))
	assert.False(t, q.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, Shanghai)))
	assert.False(t, q.Contains(time.Date(2024, 1, 6, 0, 0, 0, 0, Shanghai)))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := ParseDate("2024-03-13")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, Shanghai), got)

	_, err = ParseDate("2024/03/13")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestToday(t *testing.T) {
	t.Parallel()

	// 2024-06-30 18:30 UTC is already 2024-07-01 in Shanghai.
	now := time.Date(2024, 6, 30, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, Shanghai), Today(now))
}
