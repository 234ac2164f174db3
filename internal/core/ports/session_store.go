package ports

import (
	"context"

	"github.com/minierp/console-gateway/internal/core/domain"
)

// SessionRepository persists live sessions keyed by session ID, plus
// short-lived tombstones that record an inactivity expiry so the next
// navigation can explain itself.
type SessionRepository interface {
	Save(ctx context.Context, s domain.Session) error
	Find(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	// MarkExpired leaves a tombstone for a session destroyed by the
	// inactivity monitor.
	MarkExpired(ctx context.Context, id string) error
	// ConsumeExpired reports whether an expiry tombstone exists for id and
	// removes it, so the reason is surfaced at most once.
	ConsumeExpired(ctx context.Context, id string) (bool, error)
}

// SessionStore is the session lifecycle contract: create, read, refresh,
// and destroy over signed claims. Tokens are opaque to callers.
type SessionStore interface {
	// Create establishes a new signed session, superseding supersedeToken
	// (empty when the browser context had none).
	Create(ctx context.Context, identity domain.Identity, credential, supersedeToken string) (string, domain.Session, error)
	// Read validates the token signature and the session's liveness in the
	// backing repository. Returns domain.ErrNoSession for absent, tampered,
	// or destroyed tokens, and domain.ErrSessionExpired exactly once for a
	// session torn down by the inactivity monitor.
	Read(ctx context.Context, token string) (domain.Session, error)
	// Refresh re-issues the signed token for a live session with a fresh
	// issued-at, leaving the claims otherwise untouched.
	Refresh(ctx context.Context, token string) (string, error)
	// Destroy invalidates the session. Destroying an absent or already
	// destroyed session is a no-op.
	Destroy(ctx context.Context, token string) error
	// DestroyByID invalidates by session ID; used when no token is at hand.
	DestroyByID(ctx context.Context, id string) error
	// ExpireByID invalidates by session ID and leaves an expiry tombstone.
	ExpireByID(ctx context.Context, id string) error
}
