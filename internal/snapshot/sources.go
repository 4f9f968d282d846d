package snapshot

import (
	"context"

	"github.com/ablekit/relay/internal/report"
)

// Ledger entry kinds, matching the project/ledger collaborator's hierarchy.
const (
	KindPillar = "pillar"
	KindEpic   = "epic"
	KindSaga   = "saga"
)

// Ledger entry priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Ledger entry statuses.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
	StatusDone    = "done"
)

// LedgerEntry is one work item from the project/ledger collaborator.
type LedgerEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// ProjectState is the ledger snapshot consumed during aggregation.
type ProjectState struct {
	Mission string        `json:"mission"`
	Entries []LedgerEntry `json:"entries"`
}

// WisdomState is the wisdom-memory snapshot consumed during aggregation.
type WisdomState struct {
	Insights []report.Insight `json:"insights"`
}

// TechnicalHealth is the opaque system-health pass-through consumed during
// aggregation.
type TechnicalHealth struct {
	Health      string         `json:"health"`
	Errors      []string       `json:"errors"`
	Performance map[string]any `json:"performance,omitempty"`
}

// Input carries the externally supplied state for one aggregation. Every
// field is optional; nil or empty fields degrade to defaults instead of
// failing the operation.
type Input struct {
	// Metrics is the context-metrics snapshot current at generation time.
	Metrics report.ContextMetrics

	// Trigger is the condition that started the handoff, if any.
	Trigger *report.HandoffTrigger

	// Project, Wisdom, and Technical override the corresponding providers
	// when non-nil.
	Project   *ProjectState
	Wisdom    *WisdomState
	Technical *TechnicalHealth

	// Conversation is the recent message window. Only derived minimal fields
	// reach the report.
	Conversation []report.Message

	// Preferences is the user's communication/accessibility profile.
	Preferences *report.UserProfile
}

// ProjectProvider reads ledger state from the project collaborator.
type ProjectProvider interface {
	ProjectState(ctx context.Context) (*ProjectState, error)
}

// WisdomProvider reads insight records from the wisdom-memory collaborator.
type WisdomProvider interface {
	WisdomState(ctx context.Context) (*WisdomState, error)
}

// TechnicalProvider reads system health from the technical collaborator.
type TechnicalProvider interface {
	TechnicalHealth(ctx context.Context) (*TechnicalHealth, error)
}

// Providers bundles the optional external read sources. Any of them may be
// nil; a nil provider simply yields that section's default.
type Providers struct {
	Project   ProjectProvider
	Wisdom    WisdomProvider
	Technical TechnicalProvider
}

// SearchResult is one ranked prior-session summary returned by the
// knowledge-retrieval collaborator.
type SearchResult struct {
	SessionID string  `json:"session_id"`
	Summary   string  `json:"summary"`
	Relevance float64 `json:"relevance"`
}

// RetrievalSearcher queries the knowledge-retrieval collaborator for prior
// sessions. The handoff artifact stays bounded because full history lives
// behind this interface, fetched on demand rather than embedded.
type RetrievalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
