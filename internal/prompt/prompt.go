// Package prompt renders stored handoff reports into the fixed-structure
// onboarding prompt a successor agent resumes from. Rendering is a
// deterministic, pure function of the report; optional LLM enrichment layers
// on top and always falls back to the template output.
package prompt

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ablekit/relay/internal/report"
)

// ContextSummary is the compact companion to the rendered prompt, for
// callers that want the shape of the handoff without parsing prompt text.
type ContextSummary struct {
	HandoffID         string  `json:"handoff_id"`
	PreviousSessionID string  `json:"previous_session_id"`
	GeneratedAt       int64   `json:"generated_at"`
	HandoffReason     string  `json:"handoff_reason"`
	FillPercentage    float64 `json:"fill_percentage"`
	PriorityCount     int     `json:"priority_count"`
	ThemeCount        int     `json:"theme_count"`
}

// Result pairs the rendered prompt with its context summary.
type Result struct {
	Prompt         string         `json:"prompt"`
	ContextSummary ContextSummary `json:"context_summary"`
}

// Enricher optionally rewrites a template-rendered prompt with a
// text-generation service. Implementations must treat the template output as
// authoritative content and only improve its prose.
type Enricher interface {
	Enrich(ctx context.Context, prompt string, r *report.HandoffReport) (string, error)
}

// Synthesizer renders onboarding prompts.
type Synthesizer struct {
	enricher Enricher
}

// New creates a Synthesizer. enricher may be nil; the template-only path is
// always available.
func New(enricher Enricher) *Synthesizer {
	return &Synthesizer{enricher: enricher}
}

// Render produces the onboarding prompt and context summary from a report.
// Pure function of its input; no external calls.
func (s *Synthesizer) Render(r *report.HandoffReport) Result {
	var b strings.Builder

	b.WriteString("# Session handoff: onboarding brief\n\n")
	fmt.Fprintf(&b, "You are taking over session %s (handoff %s).\n\n", r.PreviousSessionID, r.ID)

	// 1. Executive summary.
	b.WriteString("## Executive summary\n\n")
	fmt.Fprintf(&b, "- Phase: %s\n", r.ExecutiveSummary.CurrentPhase)
	fmt.Fprintf(&b, "- Context fill at handoff: %.0f%% (%d of %d tokens)\n",
		r.ContextMetrics.FillPercentage*100, r.ContextMetrics.TokenUsage, r.ContextMetrics.MaxTokens)
	fmt.Fprintf(&b, "- Handoff reason: %s\n", r.TransitionNotes.HandoffReason)
	writeList(&b, "Urgent items", r.ExecutiveSummary.UrgentItems)
	writeList(&b, "Next steps", r.ExecutiveSummary.NextSteps)
	b.WriteString("\n")

	// 2. Accessibility and user profile.
	b.WriteString("## User profile and accessibility\n\n")
	fmt.Fprintf(&b, "- Communication style: %s\n", orUnspecified(r.UserProfile.CommunicationStyle))
	fmt.Fprintf(&b, "- Detail level: %s\n", orUnspecified(r.UserProfile.DetailLevel))
	writeList(&b, "Accessibility needs", r.UserProfile.AccessibilityNeeds)
	b.WriteString("\n")

	// 3. Immediate priorities.
	b.WriteString("## Immediate priorities\n\n")
	if len(r.ExecutiveSummary.ImmediatePriorities) == 0 {
		b.WriteString("- None recorded\n")
	}
	for _, p := range r.ExecutiveSummary.ImmediatePriorities {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n")

	// 4. Conversation context (minimal fields only).
	b.WriteString("## Conversation context\n\n")
	fmt.Fprintf(&b, "- Summary: %s\n", r.ConversationHistory.Summary)
	fmt.Fprintf(&b, "- Current topic: %s\n", r.ConversationHistory.CurrentTopic)
	fmt.Fprintf(&b, "- Last user request: %s\n", r.ConversationHistory.LastUserRequest)
	writeList(&b, "Pending questions", r.ConversationHistory.PendingQuestions)
	writeList(&b, "Assistant commitments", r.ConversationHistory.AICommitments)
	writeList(&b, "Themes", r.ConversationHistory.KeyThemes)
	b.WriteString("\n")

	// 5. Project and mission state.
	b.WriteString("## Project state\n\n")
	fmt.Fprintf(&b, "- Mission: %s\n", orUnspecified(r.ProjectContext.Mission))
	fmt.Fprintf(&b, "- Status: %s\n", orUnspecified(r.ProjectContext.Status))
	writeList(&b, "Pillars", r.ProjectContext.Pillars)
	writeList(&b, "Active sagas", r.ProjectContext.ActiveSagas)
	if len(r.WisdomInsights.TopInsights) > 0 {
		b.WriteString("- Insights:\n")
		for _, ins := range r.WisdomInsights.TopInsights {
			fmt.Fprintf(&b, "  - %s\n", ins.Text)
		}
	}
	b.WriteString("\n")

	// 6. On-demand history retrieval.
	b.WriteString("## Full history\n\n")
	b.WriteString("Full conversation history is not included here. It is retrievable from " +
		"the knowledge-retrieval service by semantic query; use it sparingly and only " +
		"when the summary above is insufficient.\n\n")

	// 7. Continuation guidance.
	b.WriteString("## Continuation guidance\n\n")
	if len(r.TransitionNotes.ContinuationGuidance) == 0 {
		b.WriteString("- Continue the conversation where it left off\n")
	}
	for _, g := range r.TransitionNotes.ContinuationGuidance {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	b.WriteString("\n")

	// 8. UX notes.
	b.WriteString("## UX notes\n\n")
	for _, n := range r.TransitionNotes.UXNotes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	for _, p := range r.TransitionNotes.PreservationPriorities {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n")

	// 9. Closing directive.
	b.WriteString("## Directive\n\n")
	b.WriteString("Acknowledge continuity with the previous session, preserve the user's " +
		"communication style, address the immediate priorities first, respect every " +
		"accessibility need listed above, and do not dump history at the user.\n")

	return Result{
		Prompt: b.String(),
		ContextSummary: ContextSummary{
			HandoffID:         r.ID,
			PreviousSessionID: r.PreviousSessionID,
			GeneratedAt:       r.Timestamp,
			HandoffReason:     r.TransitionNotes.HandoffReason,
			FillPercentage:    r.ContextMetrics.FillPercentage,
			PriorityCount:     len(r.ExecutiveSummary.ImmediatePriorities),
			ThemeCount:        len(r.ConversationHistory.KeyThemes),
		},
	}
}

// RenderEnriched renders the prompt and, when an enricher is configured,
// asks it to improve the prose. Enrichment failure falls back to the
// template output; the render itself never fails.
func (s *Synthesizer) RenderEnriched(ctx context.Context, r *report.HandoffReport) Result {
	result := s.Render(r)
	if s.enricher == nil {
		return result
	}

	enriched, err := s.enricher.Enrich(ctx, result.Prompt, r)
	if err != nil || strings.TrimSpace(enriched) == "" {
		if err != nil {
			log.Printf("prompt: enrichment degraded to template output: %v", err)
		}
		return result
	}

	result.Prompt = enriched
	return result
}

// writeList writes "- label: a, b, c" or nothing when items is empty.
func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, "; "))
}

// orUnspecified substitutes a placeholder for empty values.
func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
