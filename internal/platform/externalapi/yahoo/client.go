// Package yahoo はYahoo FinanceのチャートAPIからA株のバーを取得します。
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

// ProviderName identifies this source in logs and upstream errors.
const ProviderName = "yahoo"

// DefaultBaseURL is the public chart endpoint host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo chart client.
type Config struct {
	BaseURL   string // e.g. "https://query1.finance.yahoo.com"
	UserAgent string // Yahoo rejects requests without a browser-like agent
}

// Client は /v8/finance/chart を使った repository.QuoteSource の実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

var _ repository.QuoteSource = (*Client)(nil)

// NewClient は新しいClientを生成します。空の設定項目にはデフォルト値を使います。
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	return &Client{cfg: cfg, client: client}
}

// Symbol maps a security code to its Yahoo ticker, e.g. sh.600000 -> 600000.SS.
func Symbol(code entity.Code) string {
	switch code.Exchange {
	case entity.ExchangeShanghai:
		return code.Number + ".SS"
	case entity.ExchangeShenzhen:
		return code.Number + ".SZ"
	case entity.ExchangeBeijing:
		return code.Number + ".BJ"
	}
	return code.Number
}

func interval(f entity.Frequency) string {
	switch f {
	case entity.Weekly:
		return "1wk"
	case entity.Monthly:
		return "1mo"
	default:
		return "1d"
	}
}

// FetchBars はqのバーを取得し、指定された価格調整を適用して昇順で返します。
func (y *Client) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("interval", interval(q.Frequency))
	// 週足・月足は開始日を含む期間の初日から要求する
	v.Set("period1", strconv.FormatInt(q.Frequency.PeriodStart(q.Start).Unix(), 10))
	v.Set("period2", strconv.FormatInt(entity.DateOf(q.End).AddDate(0, 0, 1).Unix(), 10))
	v.Set("includeAdjustedClose", "true")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.BaseURL, url.PathEscape(Symbol(q.Code)), v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", q.Code, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart chartResponse
	decodeErr := json.Unmarshal(body, &chart)

	if res.StatusCode >= 400 {
		if res.StatusCode == http.StatusNotFound || (decodeErr == nil && chart.notFound()) {
			return nil, fmt.Errorf("%s: %w", q.Code, domain.ErrNoData)
		}
		return nil, &domain.UpstreamError{Provider: ProviderName, StatusCode: res.StatusCode, Err: errors.New(snippet(body))}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if chart.Chart.Error != nil {
		if chart.notFound() {
			return nil, fmt.Errorf("%s: %w", q.Code, domain.ErrNoData)
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Code, domain.ErrNoData)
	}

	bars := toBars(chart.Chart.Result[0], q)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Code, domain.ErrNoData)
	}
	return bars, nil
}

func toBars(r chartResult, q entity.Query) []entity.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quote := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	type row struct {
		bar    entity.Bar
		factor float64
	}
	rows := make([]row, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil || *c == 0 {
			continue // suspended or holiday rows come back as nulls
		}
		// Yahoo labels weekly and monthly rows by their first trading day.
		t := q.Frequency.PeriodEnd(time.Unix(ts, 0).In(entity.Shanghai))
		if !q.Covers(t) {
			continue
		}
		factor := 1.0
		if a := at(adj, i); a != nil && *a > 0 {
			factor = *a / *c
		}
		var vol int64
		if p := at(quote.Volume, i); p != nil {
			vol = int64(*p)
		}
		rows = append(rows, row{
			bar: entity.Bar{
				Code:      q.Code.String(),
				Frequency: q.Frequency,
				Adjust:    q.Adjust,
				Time:      t,
				Open:      *o,
				High:      *h,
				Low:       *l,
				Close:     *c,
				Volume:    vol,
			},
			factor: factor,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].bar.Time.Before(rows[j].bar.Time) })
	// The live row of the current period repeats its label; the later row wins.
	rows = dedupe(rows, func(r row) time.Time { return r.bar.Time })

	bars := make([]entity.Bar, 0, len(rows))
	for _, rw := range rows {
		b := rw.bar
		var f float64
		switch q.Adjust {
		case entity.AdjustForward:
			f = rw.factor
		case entity.AdjustBackward:
			// rebase so the earliest bar in the window keeps its traded price
			f = rw.factor / rows[0].factor
		default:
			f = 1
		}
		if f != 1 {
			b.Open *= f
			b.High *= f
			b.Low *= f
			b.Close *= f
		}
		bars = append(bars, b)
	}
	return bars
}

// dedupe keeps the last element of each run of equal keys in sorted s.
func dedupe[T any](s []T, key func(T) time.Time) []T {
	out := s[:0]
	for _, v := range s {
		if n := len(out); n > 0 && key(out[n-1]).Equal(key(v)) {
			out[n-1] = v
			continue
		}
		out = append(out, v)
	}
	return out
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
