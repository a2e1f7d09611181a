// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"kline_service/internal/feature/symbollist/domain"
	"kline_service/internal/feature/symbollist/domain/entity"
	"kline_service/internal/feature/symbollist/usecase"
)

// SymbolModel is the gorm row for a symbol.
type SymbolModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:16;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of the struct name.
func (SymbolModel) TableName() string { return "symbols" }

func (m SymbolModel) toEntity() entity.Symbol {
	return entity.Symbol{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Market:    m.Market,
		IsActive:  m.IsActive,
		SortKey:   m.SortKey,
		UpdatedAt: m.UpdatedAt,
	}
}

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	symbols := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		symbols = append(symbols, m.toEntity())
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Create inserts s and fills its ID. A taken code yields domain.ErrDuplicateSymbol.
func (r *symbolGorm) Create(ctx context.Context, s *entity.Symbol) error {
	active := s.IsActive
	m := SymbolModel{
		Code:     s.Code,
		Name:     s.Name,
		Market:   s.Market,
		IsActive: s.IsActive,
		SortKey:  s.SortKey,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%s: %w", s.Code, domain.ErrDuplicateSymbol)
		}
		return err
	}
	// SQLite ignores an explicit false on insert because of the column default
	if !active {
		if err := r.db.WithContext(ctx).Model(&m).Update("is_active", false).Error; err != nil {
			return err
		}
	}
	*s = m.toEntity()
	s.IsActive = active
	return nil
}

// isDuplicateKey recognises unique violations whether or not gorm translated them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
