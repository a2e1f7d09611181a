// Package router builds the gin engine and registers every HTTP route.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kline_service/internal/api"
	archivehandler "kline_service/internal/feature/archive/transport/handler"
	backtesthandler "kline_service/internal/feature/backtest/transport/handler"
	candlestickhandler "kline_service/internal/feature/candlestick/transport/handler"
	indicatorhandler "kline_service/internal/feature/indicator/transport/handler"
	symbollisthandler "kline_service/internal/feature/symbollist/transport/handler"
	"kline_service/internal/platform/http/handler"
	"kline_service/internal/platform/http/middleware"
	jwtmw "kline_service/internal/platform/jwt"
)

// Handlers groups the feature handlers. Nil database-backed handlers leave their routes
// unregistered.
type Handlers struct {
	Candlestick *candlestickhandler.CandlestickHandler
	Indicator   *indicatorhandler.IndicatorHandler
	Backtest    *backtesthandler.BacktestHandler
	Archive     *archivehandler.ArchiveHandler
	Ingest      *archivehandler.IngestHandler
	Symbol      *symbollisthandler.SymbolHandler
}

// Options configures the middleware stack.
type Options struct {
	JWTSecret    string
	AllowOrigins []string
	Logger       *slog.Logger
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(opts.Logger))
	if len(opts.AllowOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = opts.AllowOrigins
		corsCfg.AddAllowHeaders("Authorization", middleware.RequestIDHeaderKey)
		r.Use(cors.New(corsCfg))
	}

	// 導通確認用
	for _, path := range []string{"/health", "/healthz"} {
		r.GET(path, handler.Health)
		r.HEAD(path, handler.Health)
		r.OPTIONS(path, handler.Health)
	}

	r.POST("/candlestick/daily", h.Candlestick.Daily)
	r.POST("/candlestick/weekly", h.Candlestick.Weekly)
	r.POST("/candlestick/monthly", h.Candlestick.Monthly)

	r.POST("/indicator/kdj", h.Indicator.Series)
	r.POST("/indicator/kdj/:period", h.Indicator.LatestKDJ)

	r.POST("/backtest/kdj", h.Backtest.RunKDJ)

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	admin := r.Group("/")
	admin.Use(jwtmw.AuthRequired(opts.JWTSecret))

	if h.Archive != nil {
		r.GET("/archive/candles/:code", h.Archive.GetBars)
	}
	if h.Ingest != nil {
		r.GET("/archive/ingest/runs", h.Ingest.Runs)
		admin.POST("/archive/ingest", h.Ingest.Trigger)
	}
	if h.Symbol != nil {
		r.GET("/symbols", h.Symbol.List)
		admin.POST("/symbols", h.Symbol.Create)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "route not found"})
	})
	return r
}
