// Package monitor tracks context-budget consumption for active sessions and
// evaluates the threshold policy that decides when a handoff must begin.
// Everything here is pure computation over the latest sample; no I/O, no
// external calls.
package monitor

import (
	"sync"
	"time"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/report"
)

// Sample is one usage observation for a session. Token counts are supplied by
// the caller; this is not a token-counting library.
type Sample struct {
	// TokenUsage is the consumed token count.
	TokenUsage int

	// MaxTokens is the context budget. Zero means the configured default.
	MaxTokens int

	// ConversationLength is the number of messages exchanged so far.
	ConversationLength int

	// SessionStart is when the session began.
	SessionStart time.Time
}

// Monitor evaluates threshold policy for a single session. One Monitor is
// owned per session id; there is no process-wide shared instance. Safe for
// concurrent use: the metrics snapshot is guarded so overlapping samples and
// reads for the same session never observe a torn value.
type Monitor struct {
	cfg *config.Config

	mu      sync.Mutex
	metrics report.ContextMetrics

	// now is swapped in tests to control session duration.
	now func() time.Time
}

// New creates a Monitor using thresholds from cfg.
func New(cfg *config.Config) *Monitor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Monitor{
		cfg: cfg,
		now: time.Now,
	}
}

// Update records a usage sample and returns the derived metrics.
// FillPercentage is not clamped; absurd inputs pass through as observed.
func (m *Monitor) Update(s Sample) report.ContextMetrics {
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.cfg.DefaultMaxTokens
	}

	var durationMs int64
	if !s.SessionStart.IsZero() {
		durationMs = m.now().Sub(s.SessionStart).Milliseconds()
	}

	fill := 0.0
	if maxTokens > 0 {
		fill = float64(s.TokenUsage) / float64(maxTokens)
	}

	metrics := report.ContextMetrics{
		TokenUsage:         s.TokenUsage,
		MaxTokens:          maxTokens,
		ConversationLength: s.ConversationLength,
		SessionDurationMs:  durationMs,
		FillPercentage:     fill,
	}

	m.mu.Lock()
	m.metrics = metrics
	m.mu.Unlock()
	return metrics
}

// Metrics returns the most recently computed metrics.
func (m *Monitor) Metrics() report.ContextMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// EvaluateTrigger applies the threshold policy to the latest metrics in strict
// priority order; the first matching rule wins. Returns nil when no threshold
// has been crossed.
//
// ThresholdReached carries the configured ratio for fill-based triggers and
// the observed fill percentage for duration/length triggers.
func (m *Monitor) EvaluateTrigger() *report.HandoffTrigger {
	m.mu.Lock()
	metrics := m.metrics
	m.mu.Unlock()

	fill := metrics.FillPercentage

	switch {
	case fill >= m.cfg.FillImmediate:
		return &report.HandoffTrigger{
			TriggerType:          report.TriggerContextLimit,
			ThresholdReached:     m.cfg.FillImmediate,
			Urgency:              report.UrgencyImmediate,
			NotificationRequired: true,
		}
	case fill >= m.cfg.FillSoon:
		return &report.HandoffTrigger{
			TriggerType:          report.TriggerContextLimit,
			ThresholdReached:     m.cfg.FillSoon,
			Urgency:              report.UrgencySoon,
			NotificationRequired: true,
		}
	case fill >= m.cfg.FillPlanned:
		return &report.HandoffTrigger{
			TriggerType:          report.TriggerContextLimit,
			ThresholdReached:     m.cfg.FillPlanned,
			Urgency:              report.UrgencyPlanned,
			NotificationRequired: false,
		}
	case metrics.SessionDurationMs >= m.cfg.MaxSessionMs:
		return &report.HandoffTrigger{
			TriggerType:          report.TriggerSessionLength,
			ThresholdReached:     fill,
			Urgency:              report.UrgencySoon,
			NotificationRequired: true,
		}
	case metrics.ConversationLength >= m.cfg.MaxConversationLength:
		return &report.HandoffTrigger{
			TriggerType:          report.TriggerSessionLength,
			ThresholdReached:     fill,
			Urgency:              report.UrgencyPlanned,
			NotificationRequired: false,
		}
	}

	return nil
}
