// Package handler はindicatorフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/indicator/domain/kdj"
	"kline_service/internal/feature/indicator/transport/http/dto"
	"kline_service/internal/feature/indicator/usecase"
)

// IndicatorUsecase はKDJ計算のユースケースインターフェースを定義します。
type IndicatorUsecase interface {
	LatestKDJ(ctx context.Context, code string, freq entity.Frequency) (*usecase.Latest, error)
	Series(ctx context.Context, in usecase.SeriesInput) (*usecase.Series, error)
}

// IndicatorHandler は技術指標のHTTPリクエストを処理します。
type IndicatorHandler struct {
	uc IndicatorUsecase
}

// NewIndicatorHandler は指定されたusecaseでIndicatorHandlerの新しいインスタンスを生成します。
func NewIndicatorHandler(uc IndicatorUsecase) *IndicatorHandler {
	return &IndicatorHandler{uc: uc}
}

// LatestKDJ は最新期間のKDJ値を返します。
// 期間数がNに満たない場合、K・D・Jは50ではなくnullを返します。
//
// エンドポイント例:
// POST /indicator/kdj/weekly {"code":"sh.600000"}
func (h *IndicatorHandler) LatestKDJ(c *gin.Context) {
	freq, err := entity.ParseFrequency(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown period " + c.Param("period")})
		return
	}
	var req dto.KDJRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	latest, err := h.uc.LatestKDJ(c.Request.Context(), req.Code, freq)
	if err != nil {
		h.fail(c, err, req.Code)
		return
	}
	c.JSON(http.StatusOK, dto.KDJResponse{
		Code: latest.Code,
		Date: formatDate(latest.Time),
		K:    latest.K,
		D:    latest.D,
		J:    latest.J,
	})
}

// Series は期間内のKDJ系列を返します。
// 先頭N-1期間のウォームアップ中の値はnullです（K・Dの初期値50は出力しません）。
//
// エンドポイント例:
// POST /indicator/kdj {"code":"sh.600000","frequency":"w","start_date":"2024-01-01","n":9}
func (h *IndicatorHandler) Series(c *gin.Context) {
	var req dto.KDJSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	freq := entity.Weekly
	if req.Frequency != "" {
		f, err := entity.ParseFrequency(req.Frequency)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		freq = f
	}

	in := usecase.SeriesInput{
		Code:      req.Code,
		Frequency: freq,
		Params:    kdj.Params{N: req.N, M1: req.M1, M2: req.M2},
	}
	if req.StartDate != nil {
		in.Start = req.StartDate.Time
	}
	if req.EndDate != nil {
		in.End = req.EndDate.Time
	}

	s, err := h.uc.Series(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, req.Code)
		return
	}

	values := make([]dto.KDJPoint, 0, len(s.Values))
	for _, v := range s.Values {
		values = append(values, dto.KDJPoint{Date: formatDate(v.Time), K: v.K, D: v.D, J: v.J})
	}
	c.JSON(http.StatusOK, dto.KDJSeriesResponse{
		Code:      s.Code,
		Frequency: string(s.Frequency),
		Params:    dto.KDJParams{N: s.Params.N, M1: s.Params.M1, M2: s.Params.M2},
		Values:    values,
	})
}

func (h *IndicatorHandler) fail(c *gin.Context, err error, code string) {
	status := api.StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("failed to compute kdj", "code", code, "error", err)
	}
	c.JSON(status, api.NewError(err, code))
}

func formatDate(t time.Time) string {
	return t.In(entity.Shanghai).Format(entity.DateLayout)
}
