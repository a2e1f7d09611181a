// Package domain は各マーケットデータ機能で共有するエラーを定義します。
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCode は銘柄コードが "<取引所>.<6桁>" 形式でない場合に返されます。
	ErrInvalidCode = errors.New("invalid security code")

	// ErrInvalidQuery は日付範囲・頻度・調整区分が不正な場合に返されます。
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoData は指定範囲のバーがプロバイダーに存在しない場合に返されます。
	ErrNoData = errors.New("no data found")

	// ErrUnsupportedAdjust はプロバイダーが指定の価格調整に対応していない場合に返されます。
	ErrUnsupportedAdjust = errors.New("adjust flag not supported by provider")
)

// UpstreamError は株価プロバイダーからの失敗レスポンスを表します。
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s http %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s http %d", e.Provider, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary は同じリクエストが後で成功しうるかどうかを返します。
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
