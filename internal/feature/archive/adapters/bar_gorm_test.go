package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kline_service/internal/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&BarModel{}), "failed to migrate table")
	return db
}

var baseTime = time.Date(2024, 1, 2, 0, 0, 0, 0, entity.Shanghai)

func bar(code string, freq entity.Frequency, day int, close float64) entity.Bar {
	return entity.Bar{
		Code:      code,
		Frequency: freq,
		Adjust:    entity.AdjustNone,
		Time:      baseTime.AddDate(0, 0, day),
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
		Amount:    10000,
	}
}

func TestNewBarRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewBarRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestBarGorm_UpsertBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		seed         []entity.Bar
		bars         []entity.Bar
		validateFunc func(t *testing.T, db *gorm.DB)
	}{
		{
			name: "success: insert multiple bars",
			bars: []entity.Bar{bar("sh.600000", entity.Daily, 0, 10), bar("sh.600000", entity.Daily, 1, 11)},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(2), count, "bar count does not match")
			},
		},
		{
			name: "success: empty slice",
			bars: []entity.Bar{},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(0), count, "bar count should be 0")
			},
		},
		{
			name: "success: upsert updates existing bar",
			seed: []entity.Bar{bar("sh.600000", entity.Daily, 0, 10)},
			bars: []entity.Bar{bar("sh.600000", entity.Daily, 0, 20)},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(1), count, "bar count should remain 1 after upsert")

				var m BarModel
				db.First(&m)
				assert.Equal(t, 20.0, m.Close, "Close should be updated")
				assert.Equal(t, 19.0, m.Open, "Open should be updated")
			},
		},
		{
			name: "success: same date under another adjust flag is a new row",
			seed: []entity.Bar{bar("sh.600000", entity.Daily, 0, 10)},
			bars: func() []entity.Bar {
				b := bar("sh.600000", entity.Daily, 0, 10)
				b.Adjust = entity.AdjustForward
				return []entity.Bar{b}
			}(),
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(2), count)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewBarRepository(db)

			require.NoError(t, repo.UpsertBatch(context.Background(), tt.seed))
			require.NoError(t, repo.UpsertBatch(context.Background(), tt.bars))
			tt.validateFunc(t, db)
		})
	}
}

func TestBarGorm_Find(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		seed     []entity.Bar
		code     string
		freq     entity.Frequency
		limit    int
		wantDays []int
	}{
		{
			name:     "success: ascending order",
			seed:     []entity.Bar{bar("sh.600000", entity.Daily, 2, 12), bar("sh.600000", entity.Daily, 0, 10), bar("sh.600000", entity.Daily, 1, 11)},
			code:     "sh.600000",
			freq:     entity.Daily,
			limit:    10,
			wantDays: []int{2, 3, 4},
		},
		{
			name:     "success: limit keeps the newest bars",
			seed:     []entity.Bar{bar("sh.600000", entity.Daily, 0, 10), bar("sh.600000", entity.Daily, 1, 11), bar("sh.600000", entity.Daily, 2, 12)},
			code:     "sh.600000",
			freq:     entity.Daily,
			limit:    2,
			wantDays: []int{3, 4},
		},
		{
			name:     "success: limit 0 returns all",
			seed:     []entity.Bar{bar("sh.600000", entity.Daily, 0, 10), bar("sh.600000", entity.Daily, 1, 11)},
			code:     "sh.600000",
			freq:     entity.Daily,
			wantDays: []int{2, 3},
		},
		{
			name:     "success: filters code and frequency",
			seed:     []entity.Bar{bar("sh.600000", entity.Daily, 0, 10), bar("sz.000001", entity.Daily, 0, 10), bar("sh.600000", entity.Weekly, 0, 10)},
			code:     "sh.600000",
			freq:     entity.Daily,
			limit:    10,
			wantDays: []int{2},
		},
		{
			name:     "success: empty result",
			code:     "sh.600000",
			freq:     entity.Daily,
			limit:    10,
			wantDays: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewBarRepository(setupTestDB(t))
			require.NoError(t, repo.UpsertBatch(context.Background(), tt.seed))

			bars, err := repo.Find(context.Background(), tt.code, tt.freq, entity.AdjustNone, tt.limit)
			require.NoError(t, err)

			days := make([]int, 0, len(bars))
			for _, b := range bars {
				days = append(days, b.Time.Day())
				assert.Equal(t, tt.code, b.Code)
				assert.Equal(t, tt.freq, b.Frequency)
			}
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestBarGorm_Find_EntityMapping(t *testing.T) {
	t.Parallel()

	repo := NewBarRepository(setupTestDB(t))
	in := entity.Bar{
		Code:      "sz.000001",
		Frequency: entity.Weekly,
		Adjust:    entity.AdjustForward,
		Time:      time.Date(2024, 6, 14, 0, 0, 0, 0, entity.Shanghai),
		Open:      10.5,
		High:      11.75,
		Low:       10.25,
		Close:     11.0,
		Volume:    5000000,
		Amount:    54321000.5,
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), []entity.Bar{in}))

	out, err := repo.Find(context.Background(), "sz.000001", entity.Weekly, entity.AdjustForward, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, in.Code, out[0].Code)
	assert.Equal(t, in.Frequency, out[0].Frequency)
	assert.Equal(t, in.Adjust, out[0].Adjust)
	assert.True(t, in.Time.Equal(out[0].Time), "Time does not match: %v", out[0].Time)
	assert.Equal(t, entity.Shanghai, out[0].Time.Location())
	assert.Equal(t, in.Open, out[0].Open)
	assert.Equal(t, in.High, out[0].High)
	assert.Equal(t, in.Low, out[0].Low)
	assert.Equal(t, in.Close, out[0].Close)
	assert.Equal(t, in.Volume, out[0].Volume)
	assert.Equal(t, in.Amount, out[0].Amount)
}
