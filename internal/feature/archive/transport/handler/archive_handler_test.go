package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"kline_service/internal/domain"
	"kline_service/internal/domain/entity"
	"kline_service/internal/feature/archive/transport/handler"
)

// mockArchiveUsecase はArchiveUsecaseインターフェースのモック実装です。
type mockArchiveUsecase struct {
	GetBarsFunc func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error)
}

func (m *mockArchiveUsecase) GetBars(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
	return m.GetBarsFunc(ctx, code, frequency, adjust, limit)
}

func TestArchiveHandler_GetBars(t *testing.T) {
	gin.SetMode(gin.TestMode)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, entity.Shanghai)

	tests := []struct {
		name           string
		url            string
		mockGetBars    func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: all parameters specified",
			url:  "/archive/candles/sh.600000?frequency=w&adjustflag=2&limit=10",
			mockGetBars: func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
				assert.Equal(t, "sh.600000", code)
				assert.Equal(t, "w", frequency)
				assert.Equal(t, "2", adjust)
				assert.Equal(t, 10, limit)
				return []entity.Bar{
					{Code: code, Time: day, Open: 10, High: 11, Low: 9.5, Close: 10.5, Volume: 1000, Amount: 10500},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"date":"2024-01-02","open":10,"high":11,"low":9.5,"close":10.5,"volume":1000,"amount":10500}]`,
		},
		{
			name: "success: default parameter values",
			url:  "/archive/candles/sh.600000",
			mockGetBars: func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
				assert.Equal(t, "d", frequency)
				assert.Equal(t, "3", adjust)
				assert.Equal(t, 200, limit)
				return []entity.Bar{}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "edge case: invalid limit is passed as zero",
			url:  "/archive/candles/sh.600000?limit=abc",
			mockGetBars: func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
				assert.Equal(t, 0, limit)
				return []entity.Bar{}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "error: invalid code",
			url:  "/archive/candles/600000",
			mockGetBars: func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
				return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCode, code)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid security code: \"600000\""}`,
		},
		{
			name: "error: database failure",
			url:  "/archive/candles/sh.600000",
			mockGetBars: func(ctx context.Context, code, frequency, adjust string, limit int) ([]entity.Bar, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewArchiveHandler(&mockArchiveUsecase{GetBarsFunc: tt.mockGetBars})

			router := gin.New()
			router.GET("/archive/candles/:code", h.GetBars)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
