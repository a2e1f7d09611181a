// Package entity は各フィーチャーで共有するマーケットデータのモデルを定義します。
package entity

import (
	"fmt"
	"regexp"
	"strings"

	"kline_service/internal/domain"
)

// Exchange is the lower-case exchange prefix of a security code.
type Exchange string

const (
	ExchangeShanghai Exchange = "sh"
	ExchangeShenzhen Exchange = "sz"
	ExchangeBeijing  Exchange = "bj"
)

var codePattern = regexp.MustCompile(`^(sh|sz|bj)\.(\d{6})$`)

// Code はA株の銘柄を識別します（例: "sh.600000"）。
type Code struct {
	Exchange Exchange
	Number   string // 6-digit listing number
}

// ParseCode は "sh.600000" のようなコードを解析します。大文字小文字と前後の空白は無視します。
func ParseCode(s string) (Code, error) {
	m := codePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Code{}, fmt.Errorf("%w: %q", domain.ErrInvalidCode, s)
	}
	return Code{Exchange: Exchange(m[1]), Number: m[2]}, nil
}

func (c Code) String() string {
	return string(c.Exchange) + "." + c.Number
}

// Market returns the exchange MIC-style short name.
func (c Code) Market() string {
	switch c.Exchange {
	case ExchangeShanghai:
		return "SSE"
	case ExchangeShenzhen:
		return "SZSE"
	case ExchangeBeijing:
		return "BSE"
	}
	return ""
}
