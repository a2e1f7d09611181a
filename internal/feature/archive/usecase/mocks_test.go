package usecase

import (
	"context"
	"errors"

	"kline_service/internal/domain/entity"
)

type mockBarStore struct {
	FindFunc        func(ctx context.Context, code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) ([]entity.Bar, error)
	UpsertBatchFunc func(ctx context.Context, bars []entity.Bar) error
	Upserted        [][]entity.Bar
}

func (m *mockBarStore) Find(ctx context.Context, code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) ([]entity.Bar, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, code, freq, adjust, limit)
	}
	return nil, errors.New("FindFunc is not implemented")
}

func (m *mockBarStore) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	m.Upserted = append(m.Upserted, bars)
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, bars)
	}
	return nil
}

type mockSource struct {
	FetchBarsFunc func(ctx context.Context, q entity.Query) ([]entity.Bar, error)
	Queries       []entity.Query
}

func (m *mockSource) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	m.Queries = append(m.Queries, q)
	return m.FetchBarsFunc(ctx, q)
}

type mockSymbolLister struct {
	codes []string
	err   error
}

func (m mockSymbolLister) ListActiveCodes(context.Context) ([]string, error) {
	return m.codes, m.err
}
