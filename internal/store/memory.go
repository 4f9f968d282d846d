package store

import (
	"sort"
	"sync"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

// DefaultMemoryCap bounds the in-memory store when no cap is configured.
const DefaultMemoryCap = 50

// Memory is a capped, append-only in-memory Store. Once the cap is reached
// the oldest report (by insertion order) is evicted. Reads never block on
// writers beyond map access; stored reports are never mutated.
type Memory struct {
	mu      sync.RWMutex
	cap     int
	order   []string // insertion order, oldest first
	reports map[string]*report.HandoffReport
}

// NewMemory creates a Memory store holding at most maxReports entries.
// A non-positive cap falls back to DefaultMemoryCap.
func NewMemory(maxReports int) *Memory {
	if maxReports <= 0 {
		maxReports = DefaultMemoryCap
	}
	return &Memory{
		cap:     maxReports,
		reports: make(map[string]*report.HandoffReport),
	}
}

// Put appends a report. Duplicate ids are rejected; stored reports are
// immutable and there is no update path.
func (m *Memory) Put(r *report.HandoffReport) error {
	if r == nil || r.ID == "" {
		return errors.NewInvalidRequest("report must have an id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reports[r.ID]; exists {
		return errors.NewInvalidRequest("report id already stored: " + r.ID)
	}

	m.reports[r.ID] = r
	m.order = append(m.order, r.ID)

	for len(m.order) > m.cap {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.reports, oldest)
	}

	return nil
}

// Get returns the report with the given id, or a NOT_FOUND error.
func (m *Memory) Get(id string) (*report.HandoffReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	return r, nil
}

// ListRecent returns up to limit report summaries, newest first.
func (m *Memory) ListRecent(limit int) ([]report.ReportSummary, error) {
	limit = ClampLimit(limit)

	m.mu.RLock()
	all := make([]*report.HandoffReport, 0, len(m.reports))
	for _, r := range m.reports {
		all = append(all, r)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp > all[j].Timestamp
		}
		// ULIDs sort lexicographically by creation time; break timestamp ties
		// deterministically.
		return all[i].ID > all[j].ID
	})

	if len(all) > limit {
		all = all[:limit]
	}

	summaries := make([]report.ReportSummary, len(all))
	for i, r := range all {
		summaries[i] = r.ToSummary()
	}
	return summaries, nil
}

// Len returns the number of stored reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
