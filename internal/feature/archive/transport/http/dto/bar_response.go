package dto

// BarResponse はアーカイブ済みローソク足のレスポンスDTOです。
type BarResponse struct {
	Date   string  `json:"date"`   // 日付
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume int64   `json:"volume"` // 出来高
	Amount float64 `json:"amount"` // 売買代金
}
