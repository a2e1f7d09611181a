// Package resample aggregates daily bars into weekly or monthly bars.
package resample

import (
	"fmt"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
)

// Resample folds ascending daily bars into freq periods labelled by Frequency.PeriodEnd.
// Periods without trading days produce no bar.
func Resample(bars []entity.Bar, freq entity.Frequency) ([]entity.Bar, error) {
	switch freq {
	case entity.Daily:
		return bars, nil
	case entity.Weekly, entity.Monthly:
	default:
		return nil, fmt.Errorf("%w: cannot resample to %q", domain.ErrInvalidQuery, freq)
	}

	out := make([]entity.Bar, 0, len(bars)/4+1)
	for _, b := range bars {
		label := freq.PeriodEnd(b.Time)
		if n := len(out); n > 0 && out[n-1].Time.Equal(label) {
			cur := &out[n-1]
			cur.High = max(cur.High, b.High)
			cur.Low = min(cur.Low, b.Low)
			cur.Close = b.Close
			cur.Volume += b.Volume
			cur.Amount += b.Amount
			continue
		}
		agg := b
		agg.Frequency = freq
		agg.Time = label
		out = append(out, agg)
	}
	return out, nil
}
