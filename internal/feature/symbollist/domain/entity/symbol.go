// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol is a security tracked by the service. Active symbols are listed by
// GET /symbols and archived by the ingest job.
type Symbol struct {
	ID        uint
	Code      string // e.g. "sh.600000"
	Name      string
	Market    string // SSE, SZSE or BSE
	IsActive  bool
	SortKey   int
	UpdatedAt time.Time
}
