package report

// ReportSummary is a report's listing projection without the full body.
// Used by recent-first listings to reduce data transfer.
type ReportSummary struct {
	// ID is the report's ULID.
	ID string `json:"id"`

	// Timestamp is the Unix-millisecond creation time.
	Timestamp int64 `json:"timestamp"`

	// HandoffReason is copied from the report's transition notes.
	HandoffReason string `json:"handoff_reason"`

	// FillPercentage is the context fill at generation time.
	FillPercentage float64 `json:"fill_percentage"`

	// TopPriorities holds at most the first three immediate priorities.
	TopPriorities []string `json:"top_priorities"`
}

// maxSummaryPriorities caps the priorities carried in a listing entry.
const maxSummaryPriorities = 3

// ToSummary projects a report onto its listing form.
func (r *HandoffReport) ToSummary() ReportSummary {
	priorities := r.ExecutiveSummary.ImmediatePriorities
	if len(priorities) > maxSummaryPriorities {
		priorities = priorities[:maxSummaryPriorities]
	}
	top := make([]string, len(priorities))
	copy(top, priorities)

	return ReportSummary{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		HandoffReason:  r.TransitionNotes.HandoffReason,
		FillPercentage: r.ContextMetrics.FillPercentage,
		TopPriorities:  top,
	}
}
