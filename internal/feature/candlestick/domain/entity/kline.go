package entity

import "kline_service/internal/domain/entity"

// KLine is a bar enriched with values derived from the bar before it.
// PreClose and PctChg are nil when no earlier bar was available.
type KLine struct {
	entity.Bar
	PreClose *float64
	PctChg   *float64 // percent change of Close against PreClose
}
