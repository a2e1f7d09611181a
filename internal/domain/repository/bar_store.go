package repository

import (
	"context"

	"kline_service/internal/domain/entity"
)

// BarStore persists bars. (code, frequency, adjust, time) is the unique key.
type BarStore interface {
	// Find returns the newest limit bars in ascending time order.
	Find(ctx context.Context, code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) ([]entity.Bar, error)

	// UpsertBatch inserts bars or updates them on key conflict.
	UpsertBatch(ctx context.Context, bars []entity.Bar) error
}
