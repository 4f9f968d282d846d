package extract

import (
	"testing"

	"github.com/ablekit/relay/internal/report"
)

func user(text string) report.Message {
	return report.Message{Role: "user", Content: text}
}

func assistant(text string) report.Message {
	return report.Message{Role: "assistant", Content: text}
}

func TestPendingQuestions(t *testing.T) {
	k := NewKeyword()
	msgs := []report.Message{
		user("Can we finish the ledger view today?"),
		assistant("Should be doable. What order do you prefer?"),
		user("how does the upload scanner work"),
		user("Thanks, that helps."),
		user(""),
	}

	got := k.PendingQuestions(msgs)
	want := []string{
		"Can we finish the ledger view today?",
		"how does the upload scanner work",
	}
	if len(got) != len(want) {
		t.Fatalf("questions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("questions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPendingQuestions_IgnoresAssistant(t *testing.T) {
	k := NewKeyword()
	got := k.PendingQuestions([]report.Message{assistant("What would you like next?")})
	if len(got) != 0 {
		t.Errorf("assistant questions should not be pending, got %v", got)
	}
}

func TestCommitments(t *testing.T) {
	k := NewKeyword()
	msgs := []report.Message{
		assistant("I'll draft the summary after this."),
		assistant("Let me check the knowledge base first."),
		assistant("That sounds reasonable."),
		user("I'll send the file later."), // user promises are not AI commitments
	}

	got := k.Commitments(msgs)
	if len(got) != 2 {
		t.Fatalf("commitments = %v, want 2 entries", got)
	}
	if got[0] != "I'll draft the summary after this." {
		t.Errorf("commitments[0] = %q", got[0])
	}
}

func TestThemes_CanonicalOrderAndDeduplication(t *testing.T) {
	k := NewKeyword()
	msgs := []report.Message{
		user("The screen reader skips the task list."),
		assistant("I'll look at the code behind that error."),
		user("Another screen reader issue: contrast is too low."),
	}

	got := k.Themes(msgs)
	want := []string{"accessibility", "task management", "technical"}
	if len(got) != len(want) {
		t.Fatalf("themes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("themes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestThemes_Empty(t *testing.T) {
	k := NewKeyword()
	if got := k.Themes(nil); len(got) != 0 {
		t.Errorf("themes of nil = %v, want empty", got)
	}
}

func TestHasNextIntent(t *testing.T) {
	k := NewKeyword()
	tests := []struct {
		text string
		want bool
	}{
		{"What should we do next?", true},
		{"then we can review the report", true},
		{"Here is my to-do for tomorrow", true},
		{"The weather is nice", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := k.HasNextIntent(tt.text); got != tt.want {
			t.Errorf("HasNextIntent(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
