// Package db opens the gorm connection used by the archive and symbol stores.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	archiveadapters "kline_service/internal/feature/archive/adapters"
	symboladapters "kline_service/internal/feature/symbollist/adapters"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// ErrDisabled is returned by Open when the driver is "none".
var ErrDisabled = errors.New("database disabled")

// retryInterval is the pause between connection attempts.
const retryInterval = 3 * time.Second

// Config holds database connection settings.
type Config struct {
	Driver         string        `yaml:"driver"` // sqlite, postgres or none
	Path           string        `yaml:"path"`   // SQLite file
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslmode"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Migrate        bool          `yaml:"migrate"`
}

// LoadConfigFromEnv overrides fields of base with the DB_* variables that are set.
func LoadConfigFromEnv(base Config) Config {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&base.Driver, "DB_DRIVER")
	set(&base.Path, "DB_PATH")
	set(&base.Host, "DB_HOST")
	set(&base.Port, "DB_PORT")
	set(&base.User, "DB_USER")
	set(&base.Password, "DB_PASSWORD")
	set(&base.Name, "DB_NAME")
	set(&base.SSLMode, "DB_SSLMODE")
	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		base.Migrate = v == "true"
	}
	return base
}

// BuildDSN returns the PostgreSQL keyword/value DSN for cfg.
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Shanghai",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, sslmode)
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects with the configured driver and runs migrations when enabled.
func Open(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverNone, "":
		return nil, ErrDisabled
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = "data/kline.db"
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(path), gcfg)
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), timeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the tables for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&archiveadapters.BarModel{},
		&symboladapters.SymbolModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
