package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kline_service/internal/app/config"
	"kline_service/internal/platform/db"
	infraredis "kline_service/internal/platform/redis"
)

// OpenRedis connects to the configured Redis. It returns nil when no address is set or
// the server is unreachable, and callers then run without cache, locks and run history.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		slog.Info("Redis not configured. Running without cache.")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

// OpenDB opens the configured database. A disabled database yields a nil *gorm.DB and no error.
func OpenDB(cfg db.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if errors.Is(err, db.ErrDisabled) {
		slog.Info("database disabled; archive and symbol routes are off")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// CloseDB closes the pool behind gdb. A nil gdb is ignored.
func CloseDB(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
