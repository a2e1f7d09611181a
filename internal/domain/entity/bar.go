package entity

import (
	"fmt"
	"strings"
	"time"

	"kline_service/internal/domain"
)

// Frequency は1本のバーがカバーする期間（日・週・月）を表します。
type Frequency string

const (
	Daily   Frequency = "d"
	Weekly  Frequency = "w"
	Monthly Frequency = "m"
)

// ParseFrequency は "d"/"w"/"m" または "daily"/"weekly"/"monthly" を解釈します。
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "daily":
		return Daily, nil
	case "w", "weekly":
		return Weekly, nil
	case "m", "monthly":
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidQuery, s)
}

// Span は休日を含めても直前の1期間が必ず収まる遡り幅を返します。
func (f Frequency) Span() time.Duration {
	switch f {
	case Weekly:
		return 21 * 24 * time.Hour
	case Monthly:
		return 62 * 24 * time.Hour
	default:
		return 15 * 24 * time.Hour
	}
}

// PeriodStart は t を含む期間の初日を返します（週は月曜日、月は1日）。日足は t の日付そのものです。
func (f Frequency) PeriodStart(t time.Time) time.Time {
	d := DateOf(t.In(Shanghai))
	switch f {
	case Weekly:
		return d.AddDate(0, 0, -(int(d.Weekday())+6)%7)
	case Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, Shanghai)
	}
	return d
}

// PeriodEnd は t を含む期間のラベル日を返します（週は日曜日、月は月末日）。
// 週足・月足はすべてこの日付で表されます。
func (f Frequency) PeriodEnd(t time.Time) time.Time {
	d := DateOf(t.In(Shanghai))
	switch f {
	case Weekly:
		return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
	case Monthly:
		return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, Shanghai)
	}
	return d
}

// AdjustFlag は配当・分割に対する価格調整の区分です。
type AdjustFlag string

const (
	AdjustBackward AdjustFlag = "1"
	AdjustForward  AdjustFlag = "2"
	AdjustNone     AdjustFlag = "3"
)

// ParseAdjustFlag は調整区分を解釈します。空文字列はAdjustNoneとして扱います。
func ParseAdjustFlag(s string) (AdjustFlag, error) {
	switch AdjustFlag(strings.TrimSpace(s)) {
	case "", AdjustNone:
		return AdjustNone, nil
	case AdjustForward:
		return AdjustForward, nil
	case AdjustBackward:
		return AdjustBackward, nil
	}
	return "", fmt.Errorf("%w: unknown adjustflag %q", domain.ErrInvalidQuery, s)
}

// Bar は1銘柄・1期間分のOHLCVデータです。
type Bar struct {
	Code      string     // Security code, e.g. "sh.600000"
	Frequency Frequency  // d, w or m
	Adjust    AdjustFlag // Price adjustment applied to OHLC
	Time      time.Time  // Trading date at midnight Asia/Shanghai
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Amount    float64 // Turnover in CNY; 0 when the provider does not report it
}
