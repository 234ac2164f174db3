package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minierp/console-gateway/internal/core/domain"
)

const (
	sessionKeyPrefix   = "session:"
	tombstoneKeyPrefix = "session:expired:"
	tombstoneTTL       = 10 * time.Minute

	// Sessions idle out server-side long before this; the TTL is a backstop
	// so abandoned browser contexts cannot pile up forever.
	sessionTTL = 24 * time.Hour
)

// SessionRepository persists live sessions in Redis so every gateway
// replica sees the same session liveness.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// redisSession is the storage shape. The domain type hides the credential
// from JSON on purpose, so persistence uses its own mapping.
type redisSession struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Verified   bool   `json:"verified"`
	Active     bool   `json:"active"`
	Credential string `json:"credential"`
	IssuedAt   int64  `json:"issued_at"`
}

func (r *SessionRepository) Save(ctx context.Context, s domain.Session) error {
	doc := redisSession{
		ID:         s.ID,
		UserID:     s.Identity.ID,
		Name:       s.Identity.Name,
		Email:      s.Identity.Email,
		Role:       s.Identity.Role,
		Verified:   s.Identity.Verified,
		Active:     s.Identity.Active,
		Credential: s.Credential,
		IssuedAt:   s.IssuedAt.Unix(),
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, id string) (domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return domain.Session{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("find session: %w", err)
	}

	var doc redisSession
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}

	return domain.Session{
		ID: doc.ID,
		Identity: domain.Identity{
			ID:       doc.UserID,
			Name:     doc.Name,
			Email:    doc.Email,
			Role:     doc.Role,
			Verified: doc.Verified,
			Active:   doc.Active,
		},
		Credential: doc.Credential,
		IssuedAt:   time.Unix(doc.IssuedAt, 0).UTC(),
	}, nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MarkExpired leaves a short-lived tombstone recording an inactivity expiry.
func (r *SessionRepository) MarkExpired(ctx context.Context, id string) error {
	if err := r.client.Set(ctx, tombstoneKeyPrefix+id, "1", tombstoneTTL).Err(); err != nil {
		return fmt.Errorf("mark expired: %w", err)
	}
	return nil
}

// ConsumeExpired reports and clears the expiry tombstone in one step.
func (r *SessionRepository) ConsumeExpired(ctx context.Context, id string) (bool, error) {
	_, err := r.client.GetDel(ctx, tombstoneKeyPrefix+id).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume expired: %w", err)
	}
	return true, nil
}
