// Package handler はcandlestickフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/domain/entity"
	klentity "kline_service/internal/feature/candlestick/domain/entity"
	"kline_service/internal/feature/candlestick/transport/http/dto"
)

// CandlestickUsecase はK線データ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlestickUsecase interface {
	GetKLines(ctx context.Context, freq entity.Frequency, code string, start, end time.Time, adjust string) ([]klentity.KLine, error)
}

// CandlestickHandler はK線データのHTTPリクエストを処理します。
type CandlestickHandler struct {
	uc CandlestickUsecase
}

// NewCandlestickHandler は指定されたusecaseでCandlestickHandlerの新しいインスタンスを生成します。
func NewCandlestickHandler(uc CandlestickUsecase) *CandlestickHandler {
	return &CandlestickHandler{uc: uc}
}

// Daily は日足を返します。
func (h *CandlestickHandler) Daily(c *gin.Context) { h.serve(c, entity.Daily) }

// Weekly は週足を返します。
func (h *CandlestickHandler) Weekly(c *gin.Context) { h.serve(c, entity.Weekly) }

// Monthly は月足を返します。
func (h *CandlestickHandler) Monthly(c *gin.Context) { h.serve(c, entity.Monthly) }

// serve handles POST /candlestick/{daily,weekly,monthly}.
//
// リクエスト例:
// {"code":"sh.600000","start_date":"2024-01-01","end_date":"2024-01-31","adjustflag":"3"}
func (h *CandlestickHandler) serve(c *gin.Context, freq entity.Frequency) {
	var req dto.CandlestickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	lines, err := h.uc.GetKLines(c.Request.Context(), freq, req.Code, req.StartDate.Time, req.EndDate.Time, req.AdjustFlag)
	if err != nil {
		status := api.StatusOf(err)
		if status >= http.StatusInternalServerError {
			slog.Error("failed to fetch candlesticks", "code", req.Code, "frequency", freq, "error", err)
		}
		c.JSON(status, api.NewError(err, req.Code))
		return
	}

	out := make([]dto.KLineResponse, 0, len(lines))
	for _, k := range lines {
		out = append(out, toResponse(k))
	}
	c.JSON(http.StatusOK, out)
}

func toResponse(k klentity.KLine) dto.KLineResponse {
	r := dto.KLineResponse{
		Date:       k.Time.In(entity.Shanghai).Format(entity.DateLayout),
		Code:       k.Code,
		Open:       k.Open,
		High:       k.High,
		Low:        k.Low,
		Close:      k.Close,
		PreClose:   k.PreClose,
		Volume:     k.Volume,
		AdjustFlag: string(k.Adjust),
		PctChg:     k.PctChg,
	}
	if k.Amount != 0 {
		amount := k.Amount
		r.Amount = &amount
	}
	return r
}
