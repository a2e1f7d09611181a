package domain

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_Temporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			err := &UpstreamError{Provider: "yahoo", StatusCode: tt.status}
			assert.Equal(t, tt.want, err.Temporary())
		})
	}
}

func TestUpstreamError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("rate limited")
	err := &UpstreamError{Provider: "twelvedata", StatusCode: 429, Err: inner}

	assert.Equal(t, "twelvedata http 429: rate limited", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "yahoo http 503", (&UpstreamError{Provider: "yahoo", StatusCode: 503}).Error())
}
