// Package handler はbacktestフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/backtest/domain/strategy"
	"kline_service/internal/feature/backtest/transport/http/dto"
	"kline_service/internal/feature/backtest/usecase"
)

// moneyPlaces is the precision of cash amounts in responses.
const moneyPlaces = 2

// BacktestUsecase はバックテストのユースケースインターフェースを定義します。
type BacktestUsecase interface {
	RunKDJ(ctx context.Context, in usecase.Input) (*strategy.Result, error)
}

// BacktestHandler はバックテストのHTTPリクエストを処理します。
type BacktestHandler struct {
	uc BacktestUsecase
}

// NewBacktestHandler は指定されたusecaseでBacktestHandlerの新しいインスタンスを生成します。
func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// RunKDJ は週足KDJ戦略のバックテスト結果を返します。
//
// エンドポイント例:
// POST /backtest/kdj {"code":"sh.600000","start_date":"2020-01-01"}
func (h *BacktestHandler) RunKDJ(c *gin.Context) {
	var req dto.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	in := usecase.Input{Code: req.Code, Start: req.StartDate.Time, Config: configFrom(req)}
	if req.EndDate != nil {
		in.End = req.EndDate.Time
	}

	res, err := h.uc.RunKDJ(c.Request.Context(), in)
	if err != nil {
		status := api.StatusOf(err)
		if status >= http.StatusInternalServerError {
			slog.Error("backtest failed", "code", req.Code, "error", err)
		}
		c.JSON(status, api.NewError(err, req.Code))
		return
	}

	trades := make([]dto.TradeResponse, 0, len(res.Trades))
	for _, t := range res.Trades {
		trades = append(trades, dto.TradeResponse{
			Date:        t.Date.In(entity.Shanghai).Format(entity.DateLayout),
			Action:      string(t.Action),
			Price:       t.Price,
			Shares:      t.Shares,
			Value:       t.Value.Round(moneyPlaces),
			Cash:        t.Cash.Round(moneyPlaces),
			TotalShares: t.TotalShares,
			J:           t.J,
		})
	}
	s := res.Summary
	c.JSON(http.StatusOK, dto.BacktestResponse{
		Code:   req.Code,
		Trades: trades,
		Summary: dto.SummaryResponse{
			InitialCapital: s.InitialCapital,
			FinalAssets:    s.FinalAssets.Round(moneyPlaces),
			ReturnPct:      s.ReturnPct,
			Cash:           s.Cash.Round(moneyPlaces),
			Shares:         s.Shares,
			HoldingValue:   s.HoldingValue.Round(moneyPlaces),
		},
	})
}

func configFrom(req dto.BacktestRequest) strategy.Config {
	cfg := strategy.DefaultConfig()
	if req.InitialCapital != nil {
		cfg.InitialCapital = *req.InitialCapital
	}
	if req.BuyThreshold != nil {
		cfg.BuyThreshold = *req.BuyThreshold
	}
	if req.SellThreshold != nil {
		cfg.SellThreshold = *req.SellThreshold
	}
	if req.PositionFraction != nil {
		cfg.PositionFraction = *req.PositionFraction
	}
	return cfg
}
