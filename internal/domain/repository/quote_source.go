// Package repository declares the storage and data-source ports shared by features.
package repository

import (
	"context"

	"kline_service/internal/domain/entity"
)

// QuoteSource fetches bars for one security from an upstream provider.
// Implementations return bars in ascending time order, limited to the query range.
type QuoteSource interface {
	FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error)
}

// QuoteSourceFunc adapts a function to QuoteSource.
type QuoteSourceFunc func(ctx context.Context, q entity.Query) ([]entity.Bar, error)

func (f QuoteSourceFunc) FetchBars(ctx context.Context, q entity.Query) ([]entity.Bar, error) {
	return f(ctx, q)
}
