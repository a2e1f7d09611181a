package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
	"kline_service/internal/platform/externalapi/twelvedata/dto"
)

// ProviderName identifies this source in logs and upstream errors.
const ProviderName = "twelvedata"

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するQuoteSource実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがQuoteSourceを実装していることをコンパイル時に検証します。
var _ repository.QuoteSource = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataMarket{cfg: cfg, client: client}
}

func interval(f entity.Frequency) string {
	switch f {
	case entity.Weekly:
		return "1week"
	case entity.Monthly:
		return "1month"
	default:
		return "1day"
	}
}

func adjust(a entity.AdjustFlag) (string, error) {
	switch a {
	case entity.AdjustForward:
		return "all", nil
	case entity.AdjustNone, "":
		return "none", nil
	}
	return "", fmt.Errorf("%w: twelvedata has no adjustflag %s", domain.ErrUnsupportedAdjust, a)
}

// FetchBars はTwelve Data APIから時系列株価データを取得し、
// 昇順のentity.Barのスライスとして返します。
func (t *TwelveDataMarket) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	adj, err := adjust(q.Adjust)
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("symbol", q.Code.Number)
	v.Set("exchange", q.Code.Market())
	v.Set("interval", interval(q.Frequency))
	// 週足・月足は開始日を含む期間の初日から要求する
	v.Set("start_date", q.Frequency.PeriodStart(q.Start).Format(entity.DateLayout))
	// end_date is exclusive on Twelve Data
	v.Set("end_date", q.End.AddDate(0, 0, 1).Format(entity.DateLayout))
	v.Set("order", "ASC")
	v.Set("adjust", adj)
	v.Set("timezone", "Asia/Shanghai")
	v.Set("apikey", t.cfg.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, v.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch %s: %w", q.Code, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, &domain.UpstreamError{Provider: ProviderName, StatusCode: res.StatusCode}
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if body.Status == "error" {
		switch body.Code {
		case http.StatusBadRequest, http.StatusNotFound:
			// "No data is available on the specified dates" and unknown symbols both arrive as 400
			return nil, fmt.Errorf("%s: %s: %w", q.Code, body.Message, domain.ErrNoData)
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
			return nil, &domain.UpstreamError{Provider: ProviderName, StatusCode: body.Code, Err: errors.New(body.Message)}
		}
		if body.Code >= http.StatusInternalServerError {
			return nil, &domain.UpstreamError{Provider: ProviderName, StatusCode: body.Code, Err: errors.New(body.Message)}
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, val := range body.Values {
		b, err := toBar(val)
		if err != nil {
			return nil, err
		}
		// 週足・月足は期間の初日付で返るため、期間末日のラベルに揃える
		b.Time = q.Frequency.PeriodEnd(b.Time)
		if !q.Covers(b.Time) {
			continue
		}
		b.Code = q.Code.String()
		b.Frequency = q.Frequency
		b.Adjust = q.Adjust
		if b.Adjust == "" {
			b.Adjust = entity.AdjustNone
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Code, domain.ErrNoData)
	}
	return bars, nil
}

func toBar(v dto.TimeSeriesValue) (entity.Bar, error) {
	// タイムスタンプをパース
	tm, err := time.ParseInLocation(entity.DateLayout, v.Datetime, entity.Shanghai)
	if err != nil {
		tm, err = time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, entity.Shanghai)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}
	o, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	// 出来高は指数などで空文字になることがある
	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	return entity.Bar{
		Time:   entity.DateOf(tm),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: vol,
	}, nil
}
