package snapshot

import "github.com/ablekit/relay/internal/report"

// Default values substituted for missing or failed sections. All "use default
// if missing" decisions live here so degraded fields stay auditable in one
// place.
const (
	// DefaultPhase labels the executive summary when no mission record exists.
	DefaultPhase = "Exploration - no active mission"

	// DefaultTopic stands in when no user message is available.
	DefaultTopic = "General conversation"

	// DefaultRequest stands in when no user request is available.
	DefaultRequest = "No recent request"

	// DefaultSummary stands in when the conversation window is empty.
	DefaultSummary = "No conversation recorded yet"

	// DefaultHealth stands in when the technical collaborator is silent.
	DefaultHealth = "unknown"

	// DefaultReason is used when aggregation runs without a trigger.
	DefaultReason = string(report.TriggerUserRequest)
)

// normalizeProject returns a non-nil ProjectState with a non-nil entry slice.
func normalizeProject(p *ProjectState) *ProjectState {
	if p == nil {
		return &ProjectState{Entries: []LedgerEntry{}}
	}
	if p.Entries == nil {
		p.Entries = []LedgerEntry{}
	}
	return p
}

// normalizeWisdom returns a non-nil WisdomState with a non-nil insight slice.
func normalizeWisdom(w *WisdomState) *WisdomState {
	if w == nil {
		return &WisdomState{Insights: []report.Insight{}}
	}
	if w.Insights == nil {
		w.Insights = []report.Insight{}
	}
	return w
}

// normalizeTechnical returns a non-nil TechnicalHealth with defaults filled.
func normalizeTechnical(t *TechnicalHealth) *TechnicalHealth {
	if t == nil {
		t = &TechnicalHealth{}
	}
	if t.Health == "" {
		t.Health = DefaultHealth
	}
	if t.Errors == nil {
		t.Errors = []string{}
	}
	return t
}

// normalizeProfile returns a non-nil UserProfile with non-nil slices.
func normalizeProfile(p *report.UserProfile) report.UserProfile {
	if p == nil {
		p = &report.UserProfile{}
	}
	out := *p
	if out.AccessibilityNeeds == nil {
		out.AccessibilityNeeds = []string{}
	}
	return out
}

// emptyStrings never returns nil, so report fields always serialize as
// arrays. Completeness floor: every top-level field exists even with fully
// empty inputs.
func emptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
