package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/feature/symbollist/domain"
	"kline_service/internal/feature/symbollist/domain/entity"
	"kline_service/internal/feature/symbollist/transport/http/dto"
)

// SymbolUsecase は銘柄情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
	CreateSymbol(ctx context.Context, code, name string, sortKey int) (*entity.Symbol, error)
}

// SymbolHandler は銘柄情報に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧を取得するAPIです。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		slog.Error("failed to list symbols", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list symbols"})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name})
	}
	c.JSON(http.StatusOK, out)
}

// Create registers a symbol. Duplicate codes return 409 Conflict.
func (h *SymbolHandler) Create(c *gin.Context) {
	var req dto.CreateSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	s, err := h.uc.CreateSymbol(c.Request.Context(), req.Code, req.Name, req.SortKey)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSymbol) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: domain.ErrDuplicateSymbol.Error(), Code: req.Code})
			return
		}
		status := api.StatusOf(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to create symbol", "code", req.Code, "error", err)
		}
		c.JSON(status, api.NewError(err, req.Code))
		return
	}

	c.JSON(http.StatusCreated, dto.CreateSymbolResponse{
		Code:    s.Code,
		Name:    s.Name,
		Market:  s.Market,
		SortKey: s.SortKey,
	})
}
