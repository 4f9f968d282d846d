// Package ops implements the handoff operations exposed over MCP and the CLI.
// An Engine owns one lifecycle state machine per session and coordinates the
// monitor, aggregator, store, and prompt synthesizer behind the operation
// contracts.
package ops

import (
	"sync"
	"time"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/monitor"
	"github.com/ablekit/relay/internal/prompt"
	"github.com/ablekit/relay/internal/report"
	"github.com/ablekit/relay/internal/snapshot"
	"github.com/ablekit/relay/internal/store"
)

// State is one phase of the handoff lifecycle.
type State string

const (
	StateMonitoring    State = "monitoring"
	StatePreparing     State = "preparing"
	StateGenerating    State = "generating"
	StateReady         State = "ready"
	StateTransitioning State = "transitioning"
	StateComplete      State = "complete"
)

// session is the per-session lifecycle record. Guarded by Engine.mu.
type session struct {
	state State

	// trigger is the condition that started the current cycle, nil while
	// monitoring.
	trigger *report.HandoffTrigger

	// reportID is set once the cycle's report is persisted (ready and later).
	reportID string

	// completedAt drives the lazy auto-reset out of complete.
	completedAt time.Time
}

// Engine coordinates handoff operations. Safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	monitors *monitor.Registry
	agg      *snapshot.Aggregator
	reports  store.Store
	synth    *prompt.Synthesizer
	searcher snapshot.RetrievalSearcher

	mu       sync.Mutex
	sessions map[string]*session

	// now is swapped in tests to control the auto-reset clock.
	now func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSearcher wires the optional knowledge-retrieval collaborator.
func WithSearcher(s snapshot.RetrievalSearcher) EngineOption {
	return func(e *Engine) { e.searcher = s }
}

// NewEngine creates an Engine over the given report store.
func NewEngine(cfg *config.Config, agg *snapshot.Aggregator, reports store.Store, synth *prompt.Synthesizer, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{
		cfg:      cfg,
		monitors: monitor.NewRegistry(func() *monitor.Monitor { return monitor.New(cfg) }),
		agg:      agg,
		reports:  reports,
		synth:    synth,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sessionFor returns the lifecycle record for the session, creating it in
// monitoring and applying the lazy auto-reset out of complete. Caller must
// hold e.mu.
func (e *Engine) sessionFor(sessionID string) *session {
	s, ok := e.sessions[sessionID]
	if !ok {
		s = &session{state: StateMonitoring}
		e.sessions[sessionID] = s
		return s
	}
	if s.state == StateComplete {
		resetAfter := time.Duration(e.cfg.ResetDelayMs) * time.Millisecond
		if e.now().Sub(s.completedAt) >= resetAfter {
			s.reset()
		}
	}
	return s
}

// reset returns the session to monitoring with no cycle state.
func (s *session) reset() {
	s.state = StateMonitoring
	s.trigger = nil
	s.reportID = ""
	s.completedAt = time.Time{}
}

// require checks that the session is in the expected state.
func (s *session) require(want State, op string) error {
	if s.state != want {
		return errors.NewInvalidTransition(string(s.state), op)
	}
	return nil
}
