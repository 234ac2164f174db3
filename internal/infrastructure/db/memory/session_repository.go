// Package memory holds the in-memory session repository used by tests and
// single-instance development runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/minierp/console-gateway/internal/core/domain"
)

const tombstoneTTL = 10 * time.Minute

// SessionRepository keeps sessions in a map. It intentionally favors
// clarity over performance.
type SessionRepository struct {
	mu         sync.RWMutex
	sessions   map[string]domain.Session
	tombstones map[string]time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:   make(map[string]domain.Session),
		tombstones: make(map[string]time.Time),
	}
}

func (r *SessionRepository) Save(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *SessionRepository) Find(_ context.Context, id string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	return domain.Session{}, domain.ErrNoSession
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) MarkExpired(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tombstones[id] = time.Now().Add(tombstoneTTL)
	return nil
}

func (r *SessionRepository) ConsumeExpired(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline, ok := r.tombstones[id]
	if !ok {
		return false, nil
	}
	delete(r.tombstones, id)
	return time.Now().Before(deadline), nil
}
