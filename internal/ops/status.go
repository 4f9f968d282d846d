package ops

import (
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

// StatusInput contains parameters for the Status operation.
type StatusInput struct {
	SessionID string // required
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	State    State                  `json:"state"`
	Metrics  *report.ContextMetrics `json:"metrics,omitempty"`
	Trigger  *report.HandoffTrigger `json:"trigger,omitempty"`
	ReportID string                 `json:"report_id,omitempty"`
}

// Status reports the lifecycle state and latest metrics for a session.
// Unknown sessions report monitoring with no metrics.
func (e *Engine) Status(input StatusInput) (*StatusOutput, error) {
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	e.mu.Lock()
	s := e.sessionFor(input.SessionID)
	out := &StatusOutput{
		State:    s.state,
		Trigger:  s.trigger,
		ReportID: s.reportID,
	}
	e.mu.Unlock()

	if m := e.monitors.Get(input.SessionID); m != nil {
		metrics := m.Metrics()
		out.Metrics = &metrics
	}

	return out, nil
}
