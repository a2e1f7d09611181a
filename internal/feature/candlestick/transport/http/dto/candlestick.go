package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// CandlestickRequest はK線データ取得APIのリクエストボディです。
type CandlestickRequest struct {
	Code       string              `json:"code" binding:"required"`
	StartDate  *openapi_types.Date `json:"start_date" binding:"required"`
	EndDate    *openapi_types.Date `json:"end_date" binding:"required"`
	AdjustFlag string              `json:"adjustflag"`
}

// KLineResponse はK線1本分のレスポンスDTOです。
type KLineResponse struct {
	Date       string   `json:"date"`               // 日付
	Code       string   `json:"code"`               // 銘柄コード
	Open       float64  `json:"open"`               // 始値
	High       float64  `json:"high"`               // 高値
	Low        float64  `json:"low"`                // 安値
	Close      float64  `json:"close"`              // 終値
	PreClose   *float64 `json:"preclose,omitempty"` // 前日終値
	Volume     int64    `json:"volume"`             // 出来高
	Amount     *float64 `json:"amount,omitempty"`   // 売買代金
	AdjustFlag string   `json:"adjustflag"`         // 調整区分
	PctChg     *float64 `json:"pctChg,omitempty"`   // 騰落率(%)
}
