package ops

import (
	"context"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/snapshot"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	SessionID string // required

	// Snapshot carries the externally supplied state. Metrics and Trigger
	// default to the session's monitor output and cycle trigger when unset.
	Snapshot snapshot.Input
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	HandoffID string                `json:"handoff_id"`
	Report    *report.HandoffReport `json:"report"`
	State     State                 `json:"state"`
}

// Generate aggregates a handoff report for a prepared session and persists
// it. Valid only from preparing; on any failure the session resets to
// monitoring and nothing is persisted.
func (e *Engine) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	e.mu.Lock()
	s := e.sessionFor(input.SessionID)
	if err := s.require(StatePreparing, "generate"); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	s.state = StateGenerating
	cycleTrigger := s.trigger
	e.mu.Unlock()

	snap := input.Snapshot
	if snap.Trigger == nil {
		snap.Trigger = cycleTrigger
	}
	if snap.Metrics == (report.ContextMetrics{}) {
		if m := e.monitors.Get(input.SessionID); m != nil {
			snap.Metrics = m.Metrics()
		}
	}

	// Aggregation and the store write both run outside the engine lock; the
	// generating state fences out concurrent cycle operations.
	r, err := e.agg.Generate(ctx, input.SessionID, snap)
	if err == nil {
		err = e.reports.Put(r)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		s.reset()
		return nil, err
	}

	s.state = StateReady
	s.reportID = r.ID

	return &GenerateOutput{HandoffID: r.ID, Report: r, State: s.state}, nil
}
