// Package kdj はバー系列に対するKDJ（ストキャスティクス）指標を計算します。
package kdj

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
)

// WarmUp は系列先頭のバーの扱いを選択します。
type WarmUp int

const (
	// Neutral leaves the first N-1 bars empty and seeds K and D at 50.
	Neutral WarmUp = iota
	// PartialWindow uses a shrinking window at the start and seeds K and D with the first RSV.
	PartialWindow
)

// neutral is the seed for K and D and the RSV of a flat window.
const neutral = 50.0

// Params はRSVの期間NとK・Dの平滑化期間M1・M2です。
type Params struct {
	N  int `json:"n"`
	M1 int `json:"m1"`
	M2 int `json:"m2"`
}

// DefaultParams は一般的な(9,3,3)の設定です。
var DefaultParams = Params{N: 9, M1: 3, M2: 3}

// Validate rejects non-positive periods.
func (p Params) Validate() error {
	if p.N < 1 || p.M1 < 1 || p.M2 < 1 {
		return fmt.Errorf("%w: kdj periods must be positive, got n=%d m1=%d m2=%d", domain.ErrInvalidQuery, p.N, p.M1, p.M2)
	}
	return nil
}

// Value is the oscillator at one bar. Valid is false during the Neutral warm-up.
type Value struct {
	Time  time.Time
	K     float64
	D     float64
	J     float64
	Valid bool
}

// Calculate はbarsと同じ並びで、バーごとに1つのValueを返します。
func Calculate(bars []entity.Bar, p Params, mode WarmUp) ([]Value, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]Value, len(bars))
	highs := make(stats.Float64Data, len(bars))
	lows := make(stats.Float64Data, len(bars))
	for i, b := range bars {
		highs[i], lows[i] = b.High, b.Low
		out[i].Time = b.Time
	}

	k, d := neutral, neutral
	seeded := false
	for i := range bars {
		from := i - p.N + 1
		if from < 0 {
			if mode == Neutral {
				continue
			}
			from = 0
		}
		rsv, err := rsv(highs[from:i+1], lows[from:i+1], bars[i].Close)
		if err != nil {
			return nil, err
		}
		if mode == PartialWindow && !seeded {
			k, d = rsv, rsv
		} else {
			k = (float64(p.M1-1)*k + rsv) / float64(p.M1)
			d = (float64(p.M2-1)*d + k) / float64(p.M2)
		}
		seeded = true
		out[i].K, out[i].D, out[i].J = k, d, 3*k-2*d
		out[i].Valid = true
	}
	return out, nil
}

// rsv is the position of close within the window's range, in percent.
func rsv(highs, lows stats.Float64Data, last float64) (float64, error) {
	hhv, err := highs.Max()
	if err != nil {
		return 0, fmt.Errorf("kdj window max: %w", err)
	}
	llv, err := lows.Min()
	if err != nil {
		return 0, fmt.Errorf("kdj window min: %w", err)
	}
	if hhv == llv {
		return neutral, nil
	}
	return 100 * (last - llv) / (hhv - llv), nil
}

// Reading は表示用に丸めたValueです。nilのフィールドはまだ値がないことを表します。
type Reading struct {
	Time time.Time
	K    *float64
	D    *float64
	J    *float64
}

// Round converts v to a Reading with the given decimal places.
func Round(v Value, places int) Reading {
	r := Reading{Time: v.Time}
	if !v.Valid {
		return r
	}
	r.K, r.D, r.J = round(v.K, places), round(v.D, places), round(v.J, places)
	return r
}

func round(x float64, places int) *float64 {
	v, err := stats.Round(x, places)
	if err != nil {
		return nil
	}
	return &v
}
