package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/feature/archive/transport/http/dto"
	"kline_service/internal/platform/jobstate"
)

// RunHistory は取込ジョブの実行履歴を参照するインターフェースです。
type RunHistory interface {
	History(ctx context.Context, job string, limit int) ([]jobstate.Run, error)
}

// IngestHandler は取込ジョブの手動実行と実行履歴の参照を処理します。
type IngestHandler struct {
	job     string
	run     jobstate.RunFunc
	history RunHistory
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewIngestHandler はIngestHandlerの新しいインスタンスを生成します。
// history が nil の場合、履歴エンドポイントは 503 を返します。
func NewIngestHandler(job string, run jobstate.RunFunc, history RunHistory, timeout time.Duration) *IngestHandler {
	return &IngestHandler{job: job, run: run, history: history, timeout: timeout}
}

// Trigger は取込ジョブをバックグラウンドで開始し、202 を返します。
//
// エンドポイント例:
// POST /archive/ingest
func (h *IngestHandler) Trigger(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}
		n, err := h.run(ctx)
		switch {
		case errors.Is(err, jobstate.ErrLocked):
			slog.Warn("manual ingest skipped", "job", h.job, "reason", err)
		case err != nil:
			slog.Error("manual ingest failed", "job", h.job, "processed", n, "error", err)
		default:
			slog.Info("manual ingest finished", "job", h.job, "processed", n)
		}
	}()
	c.JSON(http.StatusAccepted, api.MessageResponse{Message: "ingest started"})
}

// Wait blocks until every triggered run has returned.
func (h *IngestHandler) Wait() {
	h.wg.Wait()
}

// Runs は取込ジョブの直近の実行履歴を返します。
//
// エンドポイント例:
// GET /archive/ingest/runs?limit=10
func (h *IngestHandler) Runs(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "run history unavailable"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	runs, err := h.history.History(c.Request.Context(), h.job, limit)
	if err != nil {
		slog.Error("failed to read ingest history", "job", h.job, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	out := dto.IngestRunsResponse{Job: h.job, Runs: make([]dto.IngestRunResponse, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, dto.IngestRunResponse{
			ID:         r.ID,
			StartedAt:  r.StartedAt.Format(time.RFC3339),
			FinishedAt: r.FinishedAt.Format(time.RFC3339),
			Processed:  r.Processed,
			Error:      r.Error,
		})
	}
	c.JSON(http.StatusOK, out)
}
