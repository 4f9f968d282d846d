package ops

import (
	"time"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/monitor"
	"github.com/ablekit/relay/internal/report"
)

// SubmitInput contains parameters for the SubmitUsage operation.
type SubmitInput struct {
	SessionID          string // required
	TokenUsage         int
	MaxTokens          int // 0 means the configured default
	ConversationLength int
	SessionStartMs     int64 // Unix ms; 0 means unknown
}

// SubmitOutput contains the result of the SubmitUsage operation.
type SubmitOutput struct {
	Metrics         report.ContextMetrics  `json:"metrics"`
	Trigger         *report.HandoffTrigger `json:"trigger,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	State           State                  `json:"state"`
}

// SubmitUsage records a usage sample for a session and evaluates the
// threshold policy. A trigger with urgency immediate or soon advances the
// session from monitoring to preparing; planned triggers only advise.
func (e *Engine) SubmitUsage(input SubmitInput) (*SubmitOutput, error) {
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}
	if input.TokenUsage < 0 {
		return nil, errors.NewInvalidRequest("token_usage must be non-negative")
	}

	var start time.Time
	if input.SessionStartMs > 0 {
		start = time.UnixMilli(input.SessionStartMs)
	}

	m := e.monitors.GetOrCreate(input.SessionID)
	metrics := m.Update(monitor.Sample{
		TokenUsage:         input.TokenUsage,
		MaxTokens:          input.MaxTokens,
		ConversationLength: input.ConversationLength,
		SessionStart:       start,
	})
	trigger := m.EvaluateTrigger()

	e.mu.Lock()
	s := e.sessionFor(input.SessionID)
	if trigger != nil && s.state == StateMonitoring && trigger.Urgency.Rank() >= report.UrgencySoon.Rank() {
		s.state = StatePreparing
		s.trigger = trigger
	}
	state := s.state
	e.mu.Unlock()

	return &SubmitOutput{
		Metrics:         metrics,
		Trigger:         trigger,
		Recommendations: recommendations(trigger, state),
		State:           state,
	}, nil
}

// recommendations advises the caller on what to do with the trigger.
func recommendations(trigger *report.HandoffTrigger, state State) []string {
	if trigger == nil {
		return nil
	}

	var recs []string
	switch trigger.Urgency {
	case report.UrgencyImmediate:
		recs = append(recs,
			"Generate a handoff report now; context budget is nearly exhausted",
			"Avoid starting new long-running work in this session")
	case report.UrgencySoon:
		recs = append(recs,
			"Prepare to hand off: wrap up the current exchange",
			"Generate a handoff report at the next natural pause")
	case report.UrgencyPlanned:
		recs = append(recs, "Plan a handoff; no interruption needed yet")
	}
	if state == StatePreparing {
		recs = append(recs, "Handoff preparation has begun for this session")
	}
	return recs
}
