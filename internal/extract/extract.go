// Package extract pulls pending questions, AI commitments, next-step intent,
// and conversation themes out of recent messages. Extraction is heuristic by
// nature; the Extractor interface keeps it pluggable so a model-based
// implementation can replace the keyword one without changing the
// aggregator's contract.
package extract

import (
	"strings"

	"github.com/ablekit/relay/internal/report"
)

// Extractor is the text-extraction capability used during aggregation.
type Extractor interface {
	// PendingQuestions returns unanswered user questions found in msgs.
	PendingQuestions(msgs []report.Message) []string

	// Commitments returns promises the assistant made in msgs.
	Commitments(msgs []report.Message) []string

	// Themes returns the conversation themes matched in msgs, in a stable
	// order.
	Themes(msgs []report.Message) []string

	// HasNextIntent reports whether text expresses next-step intent.
	HasNextIntent(text string) bool
}

// Keyword is the default Extractor, matching fixed phrase patterns.
type Keyword struct{}

// NewKeyword returns the default keyword-based extractor.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// commitmentPhrases are first-person future-intent openers. A message from
// the assistant containing one of these counts as a commitment.
var commitmentPhrases = []string{
	"i'll ",
	"i will ",
	"let me ",
	"i'm going to ",
	"i am going to ",
	"i can ",
	"i plan to ",
}

// questionOpeners mark a sentence as a question even without a trailing "?".
var questionOpeners = []string{
	"what", "when", "where", "which", "who", "why", "how",
	"can you", "could you", "would you", "should i", "is there", "are there",
}

// nextIntentPhrases signal the user is steering toward next steps.
var nextIntentPhrases = []string{
	"next", "then", "after that", "what should", "todo", "to-do", "plan",
	"upcoming", "following",
}

// themeKeywords maps canonical theme names to the phrases that evoke them.
// Order of canonicalThemes fixes the output order.
var canonicalThemes = []string{
	"accessibility",
	"task management",
	"planning",
	"technical",
	"communication",
	"learning",
	"wellbeing",
}

var themeKeywords = map[string][]string{
	"accessibility":   {"accessibility", "screen reader", "contrast", "keyboard", "a11y", "braille", "magnif"},
	"task management": {"task", "ticket", "ledger", "deadline", "priority", "blocked"},
	"planning":        {"plan", "roadmap", "milestone", "schedule", "goal"},
	"technical":       {"error", "bug", "code", "api", "deploy", "crash", "database"},
	"communication":   {"explain", "clarify", "summarize", "describe", "tell me"},
	"learning":        {"learn", "teach", "tutorial", "example", "how does"},
	"wellbeing":       {"tired", "break", "overwhelmed", "stress", "frustrat"},
}

// PendingQuestions returns user questions from msgs: sentences that end with
// a question mark or open with an interrogative phrase.
func (k *Keyword) PendingQuestions(msgs []report.Message) []string {
	var questions []string
	for _, m := range msgs {
		if !m.IsUser() {
			continue
		}
		text := report.CollapseSpace(m.Content)
		if text == "" {
			continue
		}
		if isQuestion(text) {
			questions = append(questions, text)
		}
	}
	return questions
}

// Commitments returns assistant messages expressing first-person future
// intent.
func (k *Keyword) Commitments(msgs []report.Message) []string {
	var commitments []string
	for _, m := range msgs {
		if m.IsUser() {
			continue
		}
		text := report.CollapseSpace(m.Content)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for _, phrase := range commitmentPhrases {
			if strings.Contains(lower, phrase) {
				commitments = append(commitments, text)
				break
			}
		}
	}
	return commitments
}

// Themes matches msgs against the fixed keyword list and returns the matched
// theme names in canonical order.
func (k *Keyword) Themes(msgs []report.Message) []string {
	matched := make(map[string]bool)
	for _, m := range msgs {
		lower := strings.ToLower(m.Content)
		for theme, keywords := range themeKeywords {
			if matched[theme] {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					matched[theme] = true
					break
				}
			}
		}
	}

	var themes []string
	for _, theme := range canonicalThemes {
		if matched[theme] {
			themes = append(themes, theme)
		}
	}
	return themes
}

// HasNextIntent reports whether text contains a next-step phrase.
func (k *Keyword) HasNextIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range nextIntentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isQuestion reports whether a collapsed sentence reads as a question.
func isQuestion(text string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, opener := range questionOpeners {
		if strings.HasPrefix(lower, opener+" ") {
			return true
		}
	}
	return false
}
