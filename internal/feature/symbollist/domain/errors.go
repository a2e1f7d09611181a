// Package domain holds errors specific to the symbollist feature.
package domain

import "errors"

// ErrDuplicateSymbol is returned when a symbol with the same code already exists.
var ErrDuplicateSymbol = errors.New("symbol already exists")
