// Package adapters はarchiveフィーチャーのgormリポジトリ実装を提供します。
package adapters

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kline_service/internal/domain/entity"
	"kline_service/internal/domain/repository"
)

type barGorm struct {
	db *gorm.DB
}

var _ repository.BarStore = (*barGorm)(nil)

// NewBarRepository returns a BarStore backed by db.
func NewBarRepository(db *gorm.DB) *barGorm {
	return &barGorm{db: db}
}

// BarModel is one archived bar. (code, frequency, adjust, time) is unique.
type BarModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:16;not null;uniqueIndex:bar_code_freq_adj_time,priority:1"`
	Frequency string    `gorm:"size:1;not null;uniqueIndex:bar_code_freq_adj_time,priority:2"`
	Adjust    string    `gorm:"size:1;not null;uniqueIndex:bar_code_freq_adj_time,priority:3"`
	Time      time.Time `gorm:"not null;uniqueIndex:bar_code_freq_adj_time,priority:4"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`
	Amount float64 `gorm:"not null;default:0"`
}

func (BarModel) TableName() string {
	return "bars"
}

func toModel(e entity.Bar) BarModel {
	return BarModel{
		Code:      e.Code,
		Frequency: string(e.Frequency),
		Adjust:    string(e.Adjust),
		Time:      entity.DateOf(e.Time.In(entity.Shanghai)),
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Volume:    e.Volume,
		Amount:    e.Amount,
	}
}

func (m BarModel) toEntity() entity.Bar {
	return entity.Bar{
		Code:      m.Code,
		Frequency: entity.Frequency(m.Frequency),
		Adjust:    entity.AdjustFlag(m.Adjust),
		Time:      entity.DateOf(m.Time.In(entity.Shanghai)),
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
		Amount:    m.Amount,
	}
}

// UpsertBatch inserts bars, overwriting prices of rows that share the unique key.
func (r *barGorm) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]BarModel, 0, len(bars))
	for _, e := range bars {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}, {Name: "frequency"}, {Name: "adjust"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "amount"}),
	}).CreateInBatches(&ms, 500).Error
}

// Find returns the newest limit bars in ascending time order. limit <= 0 returns all.
func (r *barGorm) Find(ctx context.Context, code string, freq entity.Frequency, adjust entity.AdjustFlag, limit int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where(&BarModel{Code: code, Frequency: string(freq), Adjust: string(adjust)}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "time"}, Desc: true})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	slices.Reverse(out)
	return out, nil
}
