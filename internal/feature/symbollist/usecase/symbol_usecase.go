// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"fmt"
	"strings"

	kdomain "kline_service/internal/domain"
	marketentity "kline_service/internal/domain/entity"
	"kline_service/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for symbol data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, s *entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes returns the codes of all active symbols ordered by sort key.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// CreateSymbol validates and registers a new active symbol. The code is normalised
// to lower case and the market is derived from its exchange prefix.
func (u *SymbolUsecase) CreateSymbol(ctx context.Context, code, name string, sortKey int) (*entity.Symbol, error) {
	c, err := marketentity.ParseCode(code)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", kdomain.ErrInvalidQuery)
	}

	s := &entity.Symbol{
		Code:     c.String(),
		Name:     name,
		Market:   c.Market(),
		IsActive: true,
		SortKey:  sortKey,
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
