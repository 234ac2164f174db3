package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultIdleTimeout is how long a session may go without a qualifying
// activity signal before it is force-expired.
const DefaultIdleTimeout = 5 * time.Minute

// Signal kinds that count as user activity. Anything else is ignored.
var activitySignals = map[string]struct{}{
	"pointer-down": {},
	"pointer-move": {},
	"key-press":    {},
	"scroll":       {},
	"touch-start":  {},
	"click":        {},
}

// QualifyingSignal reports whether kind resets the inactivity countdown.
func QualifyingSignal(kind string) bool {
	_, ok := activitySignals[kind]
	return ok
}

// InactivityMonitor holds one countdown per watched session. A qualifying
// signal resets the countdown; when it reaches the idle threshold the
// session is expired through the onExpire hook. Exactly one timer exists
// per session: re-watching reschedules instead of accumulating, and Cancel
// releases the timer so nothing fires against a stale session.
type InactivityMonitor struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	idle     time.Duration
	onExpire func(sessionID string)
	log      zerolog.Logger
}

// NewInactivityMonitor creates a monitor with the given idle threshold.
// If idle <= 0, DefaultIdleTimeout is used.
func NewInactivityMonitor(idle time.Duration, onExpire func(sessionID string), log zerolog.Logger) *InactivityMonitor {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &InactivityMonitor{
		timers:   make(map[string]*time.Timer),
		idle:     idle,
		onExpire: onExpire,
		log:      log,
	}
}

// Watch starts (or restarts) the countdown for a session.
func (m *InactivityMonitor) Watch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[sessionID]; ok {
		t.Reset(m.idle)
		return
	}
	m.timers[sessionID] = time.AfterFunc(m.idle, func() { m.expire(sessionID) })
}

// Signal resets the countdown for a qualifying activity signal. It reports
// whether the signal was accepted; signals for unwatched sessions or of
// non-qualifying kinds are dropped.
func (m *InactivityMonitor) Signal(sessionID, kind string) bool {
	if !QualifyingSignal(kind) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[sessionID]
	if !ok {
		return false
	}
	t.Reset(m.idle)
	return true
}

// Cancel stops and releases the countdown for a session. Safe to call for
// sessions that were never watched or already expired.
func (m *InactivityMonitor) Cancel(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[sessionID]; ok {
		t.Stop()
		delete(m.timers, sessionID)
	}
}

// Watching reports whether a countdown is live for the session.
func (m *InactivityMonitor) Watching(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[sessionID]
	return ok
}

// Shutdown stops every countdown. Used on server teardown.
func (m *InactivityMonitor) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

func (m *InactivityMonitor) expire(sessionID string) {
	m.mu.Lock()
	if _, ok := m.timers[sessionID]; !ok {
		// Cancelled between firing and acquiring the lock.
		m.mu.Unlock()
		return
	}
	delete(m.timers, sessionID)
	m.mu.Unlock()

	m.log.Info().Str("session_id", sessionID).Msg("session expired by inactivity")
	m.onExpire(sessionID)
}
