package ops

import (
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

// RequestInput contains parameters for the RequestHandoff operation.
type RequestInput struct {
	SessionID string // required
	Reason    string // "user_request" (default) or "system_optimization"
}

// RequestOutput contains the result of the RequestHandoff operation.
type RequestOutput struct {
	Trigger *report.HandoffTrigger `json:"trigger"`
	State   State                  `json:"state"`
}

// RequestHandoff starts a handoff cycle without a threshold crossing, for
// explicit user requests or scheduled optimization. Only valid while the
// session is monitoring.
func (e *Engine) RequestHandoff(input RequestInput) (*RequestOutput, error) {
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	var triggerType report.TriggerType
	switch input.Reason {
	case "", string(report.TriggerUserRequest):
		triggerType = report.TriggerUserRequest
	case string(report.TriggerSystemOptimization):
		triggerType = report.TriggerSystemOptimization
	default:
		return nil, errors.NewInvalidRequest("reason must be user_request or system_optimization")
	}

	trigger := &report.HandoffTrigger{
		TriggerType:          triggerType,
		Urgency:              report.UrgencySoon,
		NotificationRequired: triggerType == report.TriggerUserRequest,
	}
	if m := e.monitors.Get(input.SessionID); m != nil {
		trigger.ThresholdReached = m.Metrics().FillPercentage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessionFor(input.SessionID)
	if err := s.require(StateMonitoring, "request_handoff"); err != nil {
		return nil, err
	}
	s.state = StatePreparing
	s.trigger = trigger

	return &RequestOutput{Trigger: trigger, State: s.state}, nil
}
