package db

import (
	"database/sql"

	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/store"
)

// Store adapts a sqlite database to the store.Store contract, for use when
// the CLI, MCP server, and web UI must share reports across processes.
type Store struct {
	database *sql.DB
}

// NewStore wraps an initialized database.
func NewStore(database *sql.DB) *Store {
	return &Store{database: database}
}

// Put appends a report. Single attempt, fail-fast: no retry policy is defined
// for store writes.
func (s *Store) Put(r *report.HandoffReport) error {
	return Insert(s.database, r)
}

// Get returns the report with the given id, or a NOT_FOUND error.
func (s *Store) Get(id string) (*report.HandoffReport, error) {
	return GetByID(s.database, id)
}

// ListRecent returns up to limit report summaries, newest first.
func (s *Store) ListRecent(limit int) ([]report.ReportSummary, error) {
	return ListRecent(s.database, store.ClampLimit(limit))
}

// PurgeOlderThan removes reports older than the given number of days.
func (s *Store) PurgeOlderThan(days int) (int, error) {
	return Purge(s.database, days)
}
