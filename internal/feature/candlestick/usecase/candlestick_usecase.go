// Package usecase はK線データ取得のユースケースを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	klentity "kline_service/internal/feature/candlestick/domain/entity"
)

// pctChgPlaces is the precision of the reported percent change.
const pctChgPlaces = 6

// candlestickUsecase fetches K-line bars and derives previous close and percent change.
type candlestickUsecase struct {
	source repository.QuoteSource
}

// NewCandlestickUsecase は candlestickUsecase の新しいインスタンスを生成します。
func NewCandlestickUsecase(source repository.QuoteSource) *candlestickUsecase {
	return &candlestickUsecase{source: source}
}

// GetKLines returns the bars of code between start and end inclusive, oldest first.
// The fetch starts one lookback span early so the first returned bar has a previous close.
func (u *candlestickUsecase) GetKLines(ctx context.Context, freq entity.Frequency, code string, start, end time.Time, adjust string) ([]klentity.KLine, error) {
	c, err := entity.ParseCode(code)
	if err != nil {
		return nil, err
	}
	adj, err := entity.ParseAdjustFlag(adjust)
	if err != nil {
		return nil, err
	}
	q := entity.Query{
		Code:      c,
		Frequency: freq,
		Adjust:    adj,
		Start:     entity.DateOf(start),
		End:       entity.DateOf(end),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	widened := q
	widened.Start = entity.DateOf(q.Start.Add(-freq.Span()))
	bars, err := u.source.FetchBars(ctx, widened)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", c, freq, err)
	}

	out := derive(q, bars)
	if len(out) == 0 {
		return nil, domain.ErrNoData
	}
	return out, nil
}

// derive keeps the bars whose period overlaps q's range. Each kept bar takes its previous close from the bar before it,
// which may lie outside the range.
func derive(q entity.Query, bars []entity.Bar) []klentity.KLine {
	out := make([]klentity.KLine, 0, len(bars))
	for i, b := range bars {
		if !q.Covers(b.Time) {
			continue
		}
		k := klentity.KLine{Bar: b}
		if i > 0 {
			prev := bars[i-1].Close
			k.PreClose = &prev
			if prev != 0 {
				if pct, err := stats.Round((b.Close-prev)/prev*100, pctChgPlaces); err == nil {
					k.PctChg = &pct
				}
			}
		}
		out = append(out, k)
	}
	return out
}
