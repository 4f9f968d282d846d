package report

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny budget", "hello", 2, "he"},
		{"zero budget", "hello", 0, ""},
		{"negative budget", "hello", -1, ""},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.text, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
			if CountChars(got) > tt.max && tt.max > 0 {
				t.Errorf("Truncate(%q, %d) = %q exceeds budget", tt.text, tt.max, got)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	got := CollapseSpace("  a\n\tb   c  ")
	if got != "a b c" {
		t.Errorf("CollapseSpace = %q, want %q", got, "a b c")
	}
}

func TestCountChars_MultiByte(t *testing.T) {
	if n := CountChars("héllo"); n != 5 {
		t.Errorf("CountChars = %d, want 5", n)
	}
}

func TestUrgencyRank_Ordering(t *testing.T) {
	if UrgencyImmediate.Rank() <= UrgencySoon.Rank() {
		t.Error("immediate should rank above soon")
	}
	if UrgencySoon.Rank() <= UrgencyPlanned.Rank() {
		t.Error("soon should rank above planned")
	}
	if Urgency("bogus").Rank() != 0 {
		t.Error("unknown urgency should rank 0")
	}
}

func TestToSummary_CapsPriorities(t *testing.T) {
	r := &HandoffReport{
		ID:        "01TEST",
		Timestamp: 1700000000000,
		ExecutiveSummary: ExecutiveSummary{
			ImmediatePriorities: []string{"a", "b", "c", "d", "e"},
		},
		ContextMetrics:  ContextMetrics{FillPercentage: 0.87},
		TransitionNotes: TransitionNotes{HandoffReason: "context_limit"},
	}

	s := r.ToSummary()
	if len(s.TopPriorities) != 3 {
		t.Fatalf("TopPriorities length = %d, want 3", len(s.TopPriorities))
	}
	if s.TopPriorities[0] != "a" || s.TopPriorities[2] != "c" {
		t.Errorf("TopPriorities = %v, want first three", s.TopPriorities)
	}
	if s.HandoffReason != "context_limit" {
		t.Errorf("HandoffReason = %q", s.HandoffReason)
	}
	if s.FillPercentage != 0.87 {
		t.Errorf("FillPercentage = %v", s.FillPercentage)
	}

	// Mutating the summary must not touch the report.
	s.TopPriorities[0] = "mutated"
	if r.ExecutiveSummary.ImmediatePriorities[0] != "a" {
		t.Error("ToSummary should copy priorities")
	}
}
