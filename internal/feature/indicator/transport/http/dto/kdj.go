package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// KDJRequest は最新KDJ取得APIのリクエストボディです。
type KDJRequest struct {
	Code string `json:"code" binding:"required"`
}

// KDJResponse は最新KDJのレスポンスDTOです。未計算の値はnullになります。
type KDJResponse struct {
	Code string   `json:"code"`
	Date string   `json:"date"`
	K    *float64 `json:"k"`
	D    *float64 `json:"d"`
	J    *float64 `json:"j"`
}

// KDJSeriesRequest はKDJ系列取得APIのリクエストボディです。
type KDJSeriesRequest struct {
	Code      string              `json:"code" binding:"required"`
	Frequency string              `json:"frequency"`
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
	N         int                 `json:"n"`
	M1        int                 `json:"m1"`
	M2        int                 `json:"m2"`
}

// KDJParams は計算に使用したパラメータです。
type KDJParams struct {
	N  int `json:"n"`
	M1 int `json:"m1"`
	M2 int `json:"m2"`
}

// KDJPoint はKDJ系列の1点です。
type KDJPoint struct {
	Date string   `json:"date"`
	K    *float64 `json:"k"`
	D    *float64 `json:"d"`
	J    *float64 `json:"j"`
}

// KDJSeriesResponse はKDJ系列のレスポンスDTOです。
type KDJSeriesResponse struct {
	Code      string     `json:"code"`
	Frequency string     `json:"frequency"`
	Params    KDJParams  `json:"params"`
	Values    []KDJPoint `json:"values"`
}
