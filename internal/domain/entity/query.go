package entity

import (
	"fmt"
	"time"

	"kline_service/internal/domain"
)

// DateLayout is the wire format of all dates.
const DateLayout = "2006-01-02"

// Shanghai is the exchange time zone. Trading dates are midnights in this zone.
var Shanghai = loadShanghai()

func loadShanghai() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// DateOf returns midnight Asia/Shanghai of the calendar date t carries in its own zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Shanghai)
}

// Today returns the current trading-calendar date.
func Today(now time.Time) time.Time {
	return DateOf(now.In(Shanghai))
}

// ParseDate parses "YYYY-MM-DD" as a Shanghai date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Shanghai)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidQuery, s)
	}
	return t, nil
}

// Query は1銘柄の両端を含む日付範囲のバー取得条件です。
type Query struct {
	Code      Code
	Frequency Frequency
	Adjust    AdjustFlag
	Start     time.Time
	End       time.Time
}

// Validate は範囲が空または逆転している場合にErrInvalidQueryを返します。
func (q Query) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidQuery)
	}
	if q.Start.After(q.End) {
		return fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidQuery,
			q.Start.Format(DateLayout), q.End.Format(DateLayout))
	}
	return nil
}

// Contains reports whether the bar's date falls inside the query range.
func (q Query) Contains(t time.Time) bool {
	d := DateOf(t.In(Shanghai))
	return !d.Before(DateOf(q.Start)) && !d.After(DateOf(q.End))
}

// Covers reports whether the q.Frequency period containing t overlaps the query range.
func (q Query) Covers(t time.Time) bool {
	if q.Frequency == Daily {
		return q.Contains(t)
	}
	return !q.Frequency.PeriodEnd(t).Before(DateOf(q.Start)) &&
		!q.Frequency.PeriodStart(t).After(DateOf(q.End))
}
