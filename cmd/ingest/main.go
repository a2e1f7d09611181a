package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kline_service/internal/app/config"
	"kline_service/internal/app/di"
	"kline_service/internal/platform/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log, err := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if err := run(cfg); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok")
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Ingest.Timeout)
	defer cancel()

	rdb := di.OpenRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}
	gdb, err := di.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	if gdb == nil {
		return errors.New("ingest requires a database; set database.driver or DB_DRIVER")
	}
	defer di.CloseDB(gdb)

	quotes := di.NewQuoteSource(cfg, di.NewProvider(cfg.Upstream), rdb)
	store := di.NewBarStore(cfg, gdb, rdb)
	uc := di.NewIngestUsecase(cfg, quotes, store, gdb)

	job, _ := di.NewIngestJob(rdb, uc.Run, cfg.Ingest.Timeout)
	_, err = job(ctx)
	return err
}
