// Package usecase はアーカイブ済みローソク足の参照と取り込みを実装します。
package usecase

import (
	"context"

	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

const (
	// DefaultLimit はデフォルトの返却件数です。
	DefaultLimit = 200
	// MaxLimit は最大返却件数です。
	MaxLimit = 5000
)

// archiveUsecase reads bars persisted by the ingest job.
type archiveUsecase struct {
	store repository.BarStore
}

// NewArchiveUsecase はarchiveUsecaseの新しいインスタンスを生成します。
func NewArchiveUsecase(store repository.BarStore) *archiveUsecase {
	return &archiveUsecase{store: store}
}

// GetBars validates the inputs and returns up to limit archived bars, oldest first.
// An empty frequency means daily and an empty adjust flag means unadjusted.
func (u *archiveUsecase) GetBars(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
	c, err := entity.ParseCode(code)
	if err != nil {
		return nil, err
	}
	freq := entity.Daily
	if frequency != "" {
		if freq, err = entity.ParseFrequency(frequency); err != nil {
			return nil, err
		}
	}
	adj, err := entity.ParseAdjustFlag(adjust)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return u.store.Find(ctx, c.String(), freq, adj, limit)
}
