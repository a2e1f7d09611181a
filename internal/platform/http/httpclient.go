// Package http builds the outbound HTTP client used by quote providers.
package http

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: 1つのプロバイダーに対する接続を再利用するため10
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 注意:
//   - リトライ時の試行ごとのタイムアウトはcontextで制御し、Client.Timeoutは上限として使用する
//   - 各リクエストはデバッグレベルでログに出力される
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: &loggingTransport{next: t}}
}

// loggingTransport logs every upstream round trip at debug level.
type loggingTransport struct {
	next http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := l.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.DebugContext(req.Context(), "upstream request failed",
			"method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "elapsed", elapsed, "error", err)
		return nil, err
	}
	slog.DebugContext(req.Context(), "upstream request",
		"method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "status", res.StatusCode, "elapsed", elapsed)
	return res, nil
}
