// Package snapshot assembles bounded HandoffReports from monitor output and
// externally supplied session state. Aggregation is partial-failure tolerant
// by design: a missing, failed, or timed-out source degrades to its default
// value and the operation as a whole always produces a complete report.
package snapshot

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/extract"
	"github.com/ablekit/relay/internal/report"
)

// maxTopInsights caps the wisdom records carried in a report.
const maxTopInsights = 5

// maxNextStepSagas caps how many active saga titles feed next steps.
const maxNextStepSagas = 3

// Aggregator builds HandoffReports. Safe for concurrent use; all state is
// read-only after construction.
type Aggregator struct {
	cfg       *config.Config
	ext       extract.Extractor
	providers Providers

	// now is swapped in tests for deterministic timestamps.
	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithExtractor replaces the default keyword extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(a *Aggregator) { a.ext = e }
}

// WithProviders wires the optional external read sources.
func WithProviders(p Providers) Option {
	return func(a *Aggregator) { a.providers = p }
}

// New creates an Aggregator with the default keyword extractor and no
// providers.
func New(cfg *config.Config, opts ...Option) *Aggregator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Aggregator{
		cfg: cfg,
		ext: extract.NewKeyword(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate assembles a HandoffReport for the session. Explicit Input fields
// win over providers; providers are consulted concurrently for any section
// the input leaves nil, each under its own timeout. Generate fails only on
// id-generation faults, never because a source was missing or broken.
func (a *Aggregator) Generate(ctx context.Context, sessionID string, input Input) (*report.HandoffReport, error) {
	if sessionID == "" {
		return nil, errors.NewInvalidRequest("session id is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	project, wisdom, technical := a.resolveSources(ctx, input)

	// Executive-summary composition is ordered strictly after all reads.
	exec := a.buildExecutiveSummary(project, input.Conversation)
	conversation := a.buildConversation(input.Conversation)

	r := &report.HandoffReport{
		ID:                  id,
		Timestamp:           a.now().UnixMilli(),
		PreviousSessionID:   sessionID,
		ContextMetrics:      input.Metrics,
		ExecutiveSummary:    exec,
		UserProfile:         normalizeProfile(input.Preferences),
		ProjectContext:      buildProjectContext(project),
		ConversationHistory: conversation,
		WisdomInsights:      buildWisdomInsights(wisdom),
		TechnicalState: report.TechnicalState{
			Health:         technical.Health,
			Errors:         technical.Errors,
			Performance:    technical.Performance,
			ContextMetrics: input.Metrics,
		},
		TransitionNotes: a.buildTransitionNotes(input),
	}

	return r, nil
}

// resolveSources gathers project, wisdom, and technical state. Explicit input
// wins; otherwise each configured provider is queried concurrently with its
// own timeout. Failures are logged and replaced by defaults.
func (a *Aggregator) resolveSources(ctx context.Context, input Input) (*ProjectState, *WisdomState, *TechnicalHealth) {
	project := input.Project
	wisdom := input.Wisdom
	technical := input.Technical

	timeout := time.Duration(a.cfg.SourceTimeoutMs) * time.Millisecond

	var wg sync.WaitGroup

	if project == nil && a.providers.Project != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			project = fetchSource(ctx, timeout, "project", a.providers.Project.ProjectState)
		}()
	}
	if wisdom == nil && a.providers.Wisdom != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wisdom = fetchSource(ctx, timeout, "wisdom", a.providers.Wisdom.WisdomState)
		}()
	}
	if technical == nil && a.providers.Technical != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			technical = fetchSource(ctx, timeout, "technical", a.providers.Technical.TechnicalHealth)
		}()
	}

	wg.Wait()

	return normalizeProject(project), normalizeWisdom(wisdom), normalizeTechnical(technical)
}

// fetchSource runs one provider call under its own timeout. A failure or
// timeout yields nil (the caller substitutes the default) and a log line;
// it is never propagated as an aggregation failure.
func fetchSource[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) (*T, error)) *T {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := fn(callCtx)
	if err != nil {
		log.Printf("snapshot: substituting default: %v", errors.NewSourceUnavailable(name, err))
		return nil
	}
	return result
}

// buildExecutiveSummary composes the at-a-glance state from ledger entries
// and recent user intent.
func (a *Aggregator) buildExecutiveSummary(project *ProjectState, msgs []report.Message) report.ExecutiveSummary {
	exec := report.ExecutiveSummary{
		CurrentPhase:        DefaultPhase,
		ImmediatePriorities: []string{},
		UrgentItems:         []string{},
		NextSteps:           []string{},
	}

	if project.Mission != "" {
		exec.CurrentPhase = "Mission: " + project.Mission
	}

	// Active high-priority sagas first, then blocked entries.
	for _, e := range project.Entries {
		if e.Kind == KindSaga && e.Status == StatusActive && isHighPriority(e.Priority) {
			exec.ImmediatePriorities = append(exec.ImmediatePriorities, "SAGA: "+e.Title)
		}
	}
	for _, e := range project.Entries {
		if e.Status == StatusBlocked {
			exec.ImmediatePriorities = append(exec.ImmediatePriorities, "BLOCKED: "+e.Title)
		}
	}

	// Critical priority, or high priority that is also blocked.
	for _, e := range project.Entries {
		if e.Priority == PriorityCritical || (e.Priority == PriorityHigh && e.Status == StatusBlocked) {
			exec.UrgentItems = append(exec.UrgentItems, e.Title)
		}
	}

	exec.NextSteps = a.buildNextSteps(project, msgs)

	return exec
}

// buildNextSteps unions next-intent user messages with up to three active
// saga titles, deduplicated in arrival order.
func (a *Aggregator) buildNextSteps(project *ProjectState, msgs []report.Message) []string {
	steps := []string{}
	seen := make(map[string]bool)

	for _, m := range tail(msgs, a.cfg.SummaryWindow) {
		if !m.IsUser() {
			continue
		}
		text := report.CollapseSpace(m.Content)
		if text == "" || !a.ext.HasNextIntent(text) {
			continue
		}
		step := report.Truncate(text, a.cfg.RequestMaxChars)
		if !seen[step] {
			seen[step] = true
			steps = append(steps, step)
		}
	}

	count := 0
	for _, e := range project.Entries {
		if count >= maxNextStepSagas {
			break
		}
		if e.Kind != KindSaga || e.Status != StatusActive {
			continue
		}
		if !seen[e.Title] {
			seen[e.Title] = true
			steps = append(steps, e.Title)
			count++
		}
	}

	return steps
}

// buildProjectContext projects ledger state onto the report.
func buildProjectContext(project *ProjectState) report.ProjectContext {
	pc := report.ProjectContext{
		Mission:     project.Mission,
		Pillars:     []string{},
		ActiveSagas: []string{},
	}

	var active, blocked, done int
	for _, e := range project.Entries {
		switch e.Status {
		case StatusActive:
			active++
		case StatusBlocked:
			blocked++
		case StatusDone:
			done++
		}
		if e.Kind == KindPillar {
			pc.Pillars = append(pc.Pillars, e.Title)
		}
		if e.Kind == KindSaga && e.Status == StatusActive {
			pc.ActiveSagas = append(pc.ActiveSagas, e.Title)
		}
	}

	pc.Status = fmt.Sprintf("%d active, %d blocked, %d done", active, blocked, done)
	return pc
}

// buildWisdomInsights keeps the highest-relevance records, bounded.
func buildWisdomInsights(wisdom *WisdomState) report.WisdomInsights {
	insights := make([]report.Insight, len(wisdom.Insights))
	copy(insights, wisdom.Insights)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].RelevanceScore > insights[j].RelevanceScore
	})
	if len(insights) > maxTopInsights {
		insights = insights[:maxTopInsights]
	}

	return report.WisdomInsights{TopInsights: insights}
}

// preservationPriorities and uxNotes are fixed accessibility-oriented
// transition content; continuation guidance is derived per session.
var preservationPriorities = []string{
	"Maintain accessibility accommodations without interruption",
	"Preserve the user's communication style and pacing",
	"Keep active work items and assistant commitments intact",
	"Never ask the user to repeat context they already provided",
}

var uxNotes = []string{
	"Do not surface handoff mechanics unless the user asks",
	"Continue in the established tone and vocabulary",
	"Confirm understanding with short acknowledgements, not summaries",
}

// buildTransitionNotes derives the successor's instructions from the trigger
// and the user's communication preferences.
func (a *Aggregator) buildTransitionNotes(input Input) report.TransitionNotes {
	reason := DefaultReason
	if input.Trigger != nil {
		reason = string(input.Trigger.TriggerType)
	}

	guidance := []string{}
	if input.Preferences != nil {
		switch input.Preferences.CommunicationStyle {
		case "visual":
			guidance = append(guidance, "Structure responses visually: headings, short lists, clear grouping")
		case "conversational":
			guidance = append(guidance, "Prefer flowing prose over lists; keep a warm tone")
		}
		switch input.Preferences.DetailLevel {
		case "low":
			guidance = append(guidance, "Keep responses brief; expand only when asked")
		case "high":
			guidance = append(guidance, "Provide thorough detail and explicit reasoning")
		}
	}
	if last := lastUserMessage(input.Conversation); last != "" {
		guidance = append(guidance,
			"Pick up from the user's last message: "+report.Truncate(last, a.cfg.RequestMaxChars))
	}

	return report.TransitionNotes{
		HandoffReason:          reason,
		PreservationPriorities: preservationPriorities,
		UXNotes:                uxNotes,
		ContinuationGuidance:   guidance,
	}
}

// isHighPriority reports whether a ledger priority counts as high-priority
// work (high or critical).
func isHighPriority(priority string) bool {
	return priority == PriorityHigh || priority == PriorityCritical
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
