package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kdomain "kline_service/internal/domain"
	"kline_service/internal/feature/symbollist/domain"
	"kline_service/internal/feature/symbollist/domain/entity"
	"kline_service/internal/feature/symbollist/usecase"
)

// mockSymbolRepository はSymbolRepositoryインターフェースのモック実装です。
type mockSymbolRepository struct {
	ListActiveFunc      func(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodesFunc func(ctx context.Context) ([]string, error)
	CreateFunc          func(ctx context.Context, s *entity.Symbol) error
}

func (m *mockSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) ListActiveCodes(ctx context.Context) ([]string, error) {
	if m.ListActiveCodesFunc != nil {
		return m.ListActiveCodesFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) Create(ctx context.Context, s *entity.Symbol) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return nil
}

// TestNewSymbolUsecase はNewSymbolUsecaseコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewSymbolUsecase(t *testing.T) {
	t.Parallel()

	uc := usecase.NewSymbolUsecase(&mockSymbolRepository{})
	assert.NotNil(t, uc, "usecase should not be nil")
}

// TestSymbolUsecase_ListActiveSymbols はListActiveSymbolsメソッドの各種シナリオをテーブル駆動テストで検証します。
func TestSymbolUsecase_ListActiveSymbols(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		mockListActive  func(ctx context.Context) ([]entity.Symbol, error)
		expectedSymbols []entity.Symbol
		wantErr         bool
		errMsg          string
	}{
		{
			name: "success: returns list of active symbols",
			mockListActive: func(ctx context.Context) ([]entity.Symbol, error) {
				return []entity.Symbol{
					{ID: 1, Code: "sh.600000", Name: "浦发银行", Market: "SSE", IsActive: true, SortKey: 1},
					{ID: 2, Code: "sz.000001", Name: "平安银行", Market: "SZSE", IsActive: true, SortKey: 2},
				}, nil
			},
			expectedSymbols: []entity.Symbol{
				{ID: 1, Code: "sh.600000", Name: "浦发银行", Market: "SSE", IsActive: true, SortKey: 1},
				{ID: 2, Code: "sz.000001", Name: "平安银行", Market: "SZSE", IsActive: true, SortKey: 2},
			},
		},
		{
			name: "success: returns empty list when no active symbols",
			mockListActive: func(ctx context.Context) ([]entity.Symbol, error) {
				return []entity.Symbol{}, nil
			},
			expectedSymbols: []entity.Symbol{},
		},
		{
			name: "failure: repository returns error",
			mockListActive: func(ctx context.Context) ([]entity.Symbol, error) {
				return nil, errors.New("database connection failed")
			},
			wantErr: true,
			errMsg:  "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := usecase.NewSymbolUsecase(&mockSymbolRepository{ListActiveFunc: tt.mockListActive})

			symbols, err := uc.ListActiveSymbols(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.EqualError(t, err, tt.errMsg)
				}
				assert.Nil(t, symbols)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedSymbols, symbols)
			}
		})
	}
}

func TestSymbolUsecase_ListActiveCodes(t *testing.T) {
	t.Parallel()

	uc := usecase.NewSymbolUsecase(&mockSymbolRepository{
		ListActiveCodesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"sh.600000", "sz.000001"}, nil
		},
	})

	codes, err := uc.ListActiveCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sh.600000", "sz.000001"}, codes)
}

// TestSymbolUsecase_CreateSymbol は銘柄登録時の正規化とエラー伝播を検証します。
func TestSymbolUsecase_CreateSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       string
		symbolName string
		createErr  error
		want       *entity.Symbol
		wantErr    error
	}{
		{
			name:       "success: code normalised and market derived",
			code:       " SH.600519 ",
			symbolName: "贵州茅台",
			want:       &entity.Symbol{ID: 7, Code: "sh.600519", Name: "贵州茅台", Market: "SSE", IsActive: true, SortKey: 3},
		},
		{
			name:       "failure: invalid code",
			code:       "600519",
			symbolName: "贵州茅台",
			wantErr:    kdomain.ErrInvalidCode,
		},
		{
			name:       "failure: blank name",
			code:       "sz.000001",
			symbolName: "  ",
			wantErr:    kdomain.ErrInvalidQuery,
		},
		{
			name:       "failure: duplicate",
			code:       "sz.000001",
			symbolName: "平安银行",
			createErr:  domain.ErrDuplicateSymbol,
			wantErr:    domain.ErrDuplicateSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockSymbolRepository{
				CreateFunc: func(ctx context.Context, s *entity.Symbol) error {
					if tt.createErr != nil {
						return tt.createErr
					}
					s.ID = 7
					return nil
				},
			}
			uc := usecase.NewSymbolUsecase(repo)

			got, err := uc.CreateSymbol(context.Background(), tt.code, tt.symbolName, 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSymbolUsecase_ListActiveSymbols_ContextCancellation はコンテキストがキャンセルされた場合にエラーが返されることを検証します。
func TestSymbolUsecase_ListActiveSymbols_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := usecase.NewSymbolUsecase(&mockSymbolRepository{
		ListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
			return nil, ctx.Err()
		},
	})

	symbols, err := uc.ListActiveSymbols(ctx)

	assert.Nil(t, symbols)
	assert.ErrorIs(t, err, context.Canceled)
}
