package dto

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// BacktestRequest はKDJバックテストAPIのリクエストボディです。
// 省略したパラメータにはデフォルト値が使用されます。
type BacktestRequest struct {
	Code             string              `json:"code" binding:"required"`
	StartDate        *openapi_types.Date `json:"start_date" binding:"required"`
	EndDate          *openapi_types.Date `json:"end_date"`
	InitialCapital   *decimal.Decimal    `json:"initial_capital"`
	BuyThreshold     *float64            `json:"buy_threshold"`
	SellThreshold    *float64            `json:"sell_threshold"`
	PositionFraction *decimal.Decimal    `json:"position_fraction"`
}

// TradeResponse は約定1件分のレスポンスDTOです。
type TradeResponse struct {
	Date        string          `json:"date"`
	Action      string          `json:"action"`
	Price       decimal.Decimal `json:"price"`
	Shares      int64           `json:"shares"`
	Value       decimal.Decimal `json:"value"`
	Cash        decimal.Decimal `json:"cash"`
	TotalShares int64           `json:"total_shares"`
	J           float64         `json:"j"`
}

// SummaryResponse はバックテスト結果の集計です。
type SummaryResponse struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	FinalAssets    decimal.Decimal `json:"final_assets"`
	ReturnPct      decimal.Decimal `json:"return_pct"`
	Cash           decimal.Decimal `json:"cash"`
	Shares         int64           `json:"shares"`
	HoldingValue   decimal.Decimal `json:"holding_value"`
}

// BacktestResponse はKDJバックテストAPIのレスポンスです。
type BacktestResponse struct {
	Code    string          `json:"code"`
	Trades  []TradeResponse `json:"trades"`
	Summary SummaryResponse `json:"summary"`
}
