// Package config loads the service configuration from a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kline_service/internal/domain/entity"
	"kline_service/internal/platform/db"
	"kline_service/internal/platform/retry"
)

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

type (
	ServerConfig struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	}

	LogConfig struct {
		Level  string `yaml:"level"`  // debug, info, warn or error
		Format string `yaml:"format"` // text or json
	}

	UpstreamConfig struct {
		Provider     string        `yaml:"provider"` // yahoo or twelvedata
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		UserAgent    string        `yaml:"user_agent"`
		Timeout      time.Duration `yaml:"timeout"`
		RateLimit    int           `yaml:"rate_limit"` // calls per RateInterval, 0 disables
		RateInterval time.Duration `yaml:"rate_interval"`
		RateBurst    int           `yaml:"rate_burst"`
	}

	RetryConfig struct {
		MaxAttempts     int           `yaml:"max_attempts"`
		AttemptTimeout  time.Duration `yaml:"attempt_timeout"`
		InitialInterval time.Duration `yaml:"initial_interval"`
		MaxInterval     time.Duration `yaml:"max_interval"`
	}

	CacheConfig struct {
		Enabled       bool          `yaml:"enabled"`
		HistoricalTTL time.Duration `yaml:"historical_ttl"`
		RefreshHour   int           `yaml:"refresh_hour"`
		ArchiveTTL    time.Duration `yaml:"archive_ttl"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}

	IngestConfig struct {
		Enabled      bool          `yaml:"enabled"`
		Cron         string        `yaml:"cron"`
		LookbackDays int           `yaml:"lookback_days"`
		Adjust       string        `yaml:"adjust"`
		Timeout      time.Duration `yaml:"timeout"`
		RunOnStart   bool          `yaml:"run_on_start"`
	}

	AuthConfig struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	}

	CORSConfig struct {
		AllowOrigins []string `yaml:"allow_origins"`
	}

	// Config holds all application configuration.
	Config struct {
		Server   ServerConfig   `yaml:"server"`
		Log      LogConfig      `yaml:"log"`
		Upstream UpstreamConfig `yaml:"upstream"`
		Retry    RetryConfig    `yaml:"retry"`
		Cache    CacheConfig    `yaml:"cache"`
		Redis    RedisConfig    `yaml:"redis"`
		Database db.Config      `yaml:"database"`
		Ingest   IngestConfig   `yaml:"ingest"`
		Auth     AuthConfig     `yaml:"auth"`
		CORS     CORSConfig     `yaml:"cors"`
	}
)

// Load reads the YAML file at path (a missing file is not an error), loads .env,
// applies environment variable overrides and fills the remaining defaults.
// An empty path falls back to CONFIG_PATH and then DefaultPath.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	if path == "" {
		path = getEnv("CONFIG_PATH", DefaultPath)
	}

	cfg := &Config{Cache: CacheConfig{Enabled: true}}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "HOST")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Upstream.Provider, "QUOTE_PROVIDER")
	setString(&c.Upstream.BaseURL, "QUOTE_BASE_URL")
	setString(&c.Upstream.APIKey, "TWELVE_DATA_API_KEY")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Ingest.Cron, "INGEST_CRON")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	c.Database = db.LoadConfigFromEnv(c.Database)

	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" && c.Redis.Addr == "" {
		c.Redis.Addr = host + ":" + port
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.CORS.AllowOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setInt(&c.Server.Port, "PORT"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setDuration(&c.Upstream.Timeout, "QUOTE_TIMEOUT"),
		setBool(&c.Cache.Enabled, "CACHE_ENABLED"),
		setBool(&c.Ingest.Enabled, "INGEST_ENABLED"),
	)
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Upstream.Provider == "" {
		c.Upstream.Provider = ProviderYahoo
	}
	if c.Retry.AttemptTimeout <= 0 {
		c.Retry.AttemptTimeout = retry.DefaultAttemptTimeout
	}
	// HTTPクライアントのタイムアウトが試行タイムアウトより先に切れないようにする
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = c.Retry.AttemptTimeout
	}
	if c.Upstream.RateInterval <= 0 {
		c.Upstream.RateInterval = time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = db.DriverNone
	}
	if c.Ingest.Cron == "" {
		c.Ingest.Cron = "0 30 18 * * 1-5"
	}
	if c.Ingest.LookbackDays <= 0 {
		c.Ingest.LookbackDays = 30
	}
	if c.Ingest.Adjust == "" {
		c.Ingest.Adjust = string(entity.AdjustNone)
	}
	if c.Ingest.Timeout <= 0 {
		c.Ingest.Timeout = 30 * time.Minute
	}
	if c.Cache.ArchiveTTL <= 0 {
		c.Cache.ArchiveTTL = time.Hour
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !slices.Contains([]string{ProviderYahoo, ProviderTwelveData}, c.Upstream.Provider) {
		return fmt.Errorf("upstream.provider must be yahoo or twelvedata, got %q", c.Upstream.Provider)
	}
	if c.Upstream.Provider == ProviderTwelveData && c.Upstream.APIKey == "" {
		return errors.New("upstream.api_key is required for twelvedata")
	}
	if c.Upstream.Timeout < c.Retry.AttemptTimeout {
		return fmt.Errorf("upstream.timeout %s must not be shorter than retry.attempt_timeout %s",
			c.Upstream.Timeout, c.Retry.AttemptTimeout)
	}
	if c.Upstream.RateLimit < 0 {
		return errors.New("upstream.rate_limit must not be negative")
	}
	if !slices.Contains([]string{db.DriverNone, db.DriverSQLite, db.DriverPostgres}, c.Database.Driver) {
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	if c.Ingest.Enabled && c.Database.Driver == db.DriverNone {
		return errors.New("ingest.enabled requires a database")
	}
	if _, err := entity.ParseAdjustFlag(c.Ingest.Adjust); err != nil {
		return fmt.Errorf("ingest.adjust: %w", err)
	}
	if c.Cache.RefreshHour < 0 || c.Cache.RefreshHour > 23 {
		return fmt.Errorf("cache.refresh_hour must be between 0 and 23, got %d", c.Cache.RefreshHour)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, key string) {
	*dst = getEnv(key, *dst)
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
