package ops

import (
	"context"
	"log"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/prompt"
	"github.com/ablekit/relay/internal/snapshot"
)

// maxRelatedSessions caps the knowledge-retrieval results attached to a
// synthesized prompt.
const maxRelatedSessions = 3

// SynthesizeInput contains parameters for the Synthesize operation.
type SynthesizeInput struct {
	ID string // required
}

// SynthesizeOutput contains the result of the Synthesize operation.
type SynthesizeOutput struct {
	Prompt         string                  `json:"prompt"`
	ContextSummary prompt.ContextSummary   `json:"context_summary"`
	Related        []snapshot.SearchResult `json:"related_sessions,omitempty"`
	State          State                   `json:"state"`
}

// Synthesize renders the onboarding prompt for a stored report. When the
// report is the session's current ready cycle, the session advances through
// transitioning to complete; historical reports render without touching
// lifecycle state.
func (e *Engine) Synthesize(ctx context.Context, input SynthesizeInput) (*SynthesizeOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := e.reports.Get(input.ID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	s := e.sessionFor(r.PreviousSessionID)
	current := s.state == StateReady && s.reportID == input.ID
	if current {
		s.state = StateTransitioning
	}
	e.mu.Unlock()

	result := e.synth.RenderEnriched(ctx, r)

	var related []snapshot.SearchResult
	if e.searcher != nil {
		related = e.relatedSessions(ctx, r.ConversationHistory.CurrentTopic)
	}

	e.mu.Lock()
	if current {
		s.state = StateComplete
		s.completedAt = e.now()
	}
	state := s.state
	e.mu.Unlock()

	return &SynthesizeOutput{
		Prompt:         result.Prompt,
		ContextSummary: result.ContextSummary,
		Related:        related,
		State:          state,
	}, nil
}

// relatedSessions queries the knowledge-retrieval collaborator for prior
// sessions on the same topic. Failures degrade to no results.
func (e *Engine) relatedSessions(ctx context.Context, topic string) []snapshot.SearchResult {
	if topic == "" {
		return nil
	}
	results, err := e.searcher.Search(ctx, topic, maxRelatedSessions)
	if err != nil {
		log.Printf("ops: knowledge retrieval degraded: %v", err)
		return nil
	}
	return results
}
