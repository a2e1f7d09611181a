// Package handler はarchiveフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/archive/transport/http/dto"
)

// ArchiveUsecase はアーカイブ参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ArchiveUsecase interface {
	GetBars(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error)
}

// ArchiveHandler はアーカイブ済みローソク足のHTTPリクエストを処理します。
type ArchiveHandler struct {
	uc ArchiveUsecase
}

// NewArchiveHandler は指定されたusecaseでArchiveHandlerの新しいインスタンスを生成します。
func NewArchiveHandler(uc ArchiveUsecase) *ArchiveHandler {
	return &ArchiveHandler{uc: uc}
}

// GetBars は保存済みのローソク足をJSONで返します。
//
// エンドポイント例:
// GET /archive/candles/:code?frequency=d&adjustflag=3&limit=200
func (h *ArchiveHandler) GetBars(c *gin.Context) {
	code := c.Param("code")
	frequency := c.DefaultQuery("frequency", "d")
	adjust := c.DefaultQuery("adjustflag", "3")
	// 変換できない値は0となり、usecase側でデフォルト値に置き換えられる
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	bars, err := h.uc.GetBars(c.Request.Context(), code, frequency, adjust, limit)
	if err != nil {
		status := api.StatusOf(err)
		if status >= http.StatusInternalServerError {
			slog.Error("failed to read archived bars", "code", code, "error", err)
		}
		c.JSON(status, api.NewError(err, code))
		return
	}

	out := make([]dto.BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.BarResponse{
			Date:   b.Time.In(entity.Shanghai).Format(entity.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			Amount: b.Amount,
		})
	}
	c.JSON(http.StatusOK, out)
}
