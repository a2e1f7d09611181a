package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kline_service/internal/app/config"
	"kline_service/internal/app/di"
	"kline_service/internal/app/router"
	"kline_service/internal/domain/entity"
	"kline_service/internal/platform/logger"
	"kline_service/internal/platform/scheduler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := di.OpenRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// db
	gdb, err := di.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer di.CloseDB(gdb)

	quotes := di.NewQuoteSource(cfg, di.NewProvider(cfg.Upstream), rdb)
	handlers, ingest := di.NewHandlers(cfg, quotes, gdb, rdb)

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Admin routes will reject every request.")
	}

	engine := router.NewRouter(handlers, router.Options{
		JWTSecret:    cfg.Auth.JWTSecret,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Logger:       log,
	})

	var sched *scheduler.Scheduler
	if cfg.Ingest.Enabled && ingest != nil {
		sched = scheduler.New(ctx, entity.Shanghai)
		job := scheduler.JobFunc(ingest)
		if err := sched.Register(di.IngestJobName, cfg.Ingest.Cron, job, cfg.Ingest.Timeout); err != nil {
			return err
		}
		sched.Start()
		if cfg.Ingest.RunOnStart {
			slog.Info("run_on_start enabled, executing ingest now")
			go sched.RunNow(di.IngestJobName, job, cfg.Ingest.Timeout)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "provider", cfg.Upstream.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if handlers.Ingest != nil {
		handlers.Ingest.Wait()
	}
	slog.Info("server stopped")
	return nil
}
