package api

import (
	"context"
	"errors"
	"net/http"

	"kline_service/internal/domain"
)

// StatusOf maps a usecase error to the HTTP status returned to the client.
func StatusOf(err error) int {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrUnsupportedAdjust):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// NewError builds the response body for err. Client errors carry the error text,
// server-side failures a fixed message.
func NewError(err error, code string) ErrorResponse {
	switch StatusOf(err) {
	case http.StatusBadRequest:
		return ErrorResponse{Error: err.Error()}
	case http.StatusNotFound:
		return ErrorResponse{Error: domain.ErrNoData.Error(), Code: code}
	case http.StatusGatewayTimeout:
		return ErrorResponse{Error: "upstream request timed out"}
	case http.StatusBadGateway:
		return ErrorResponse{Error: "upstream request failed"}
	}
	return ErrorResponse{Error: "internal server error"}
}
