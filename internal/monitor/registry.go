package monitor

import "sync"

// Registry owns one Monitor per session id, so concurrent sessions never
// share mutable monitor state.
type Registry struct {
	mu       sync.RWMutex
	monitors map[string]*Monitor
	factory  func() *Monitor
}

// NewRegistry creates a Registry that builds monitors with the given factory.
func NewRegistry(factory func() *Monitor) *Registry {
	return &Registry{
		monitors: make(map[string]*Monitor),
		factory:  factory,
	}
}

// Get returns the Monitor for a session, or nil if none exists yet.
func (r *Registry) Get(sessionID string) *Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.monitors[sessionID]
}

// GetOrCreate returns the Monitor for a session, creating it on first use.
func (r *Registry) GetOrCreate(sessionID string) *Monitor {
	r.mu.RLock()
	m, ok := r.monitors[sessionID]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.monitors[sessionID]; ok {
		return m
	}
	m = r.factory()
	r.monitors[sessionID] = m
	return m
}

// Remove forgets a session's monitor.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.monitors, sessionID)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.monitors)
}
