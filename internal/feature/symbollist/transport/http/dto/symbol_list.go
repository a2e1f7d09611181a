// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateSymbolRequest is the body of POST /symbols.
type CreateSymbolRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	SortKey int    `json:"sort_key"`
}

// CreateSymbolResponse echoes the stored symbol.
type CreateSymbolResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Market  string `json:"market"`
	SortKey int    `json:"sort_key"`
}
