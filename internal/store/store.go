// Package store defines the append-only keyed collection of handoff reports.
// Reports are created once and never mutated; the store owns them for their
// lifetime. Two implementations exist: the capped in-memory store here, and
// the sqlite-backed store in internal/db for cross-process use.
package store

import "github.com/ablekit/relay/internal/report"

// Listing limits.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Store is the report collection contract. Put is an atomic append, Get by
// unknown id yields a NOT_FOUND error (never an internal fault), ListRecent
// returns summaries sorted by timestamp descending.
type Store interface {
	Put(r *report.HandoffReport) error
	Get(id string) (*report.HandoffReport, error)
	ListRecent(limit int) ([]report.ReportSummary, error)
}

// ClampLimit applies the default and maximum listing limits.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
