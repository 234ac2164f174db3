package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// SessionService implements the session store contract over signed claims.
// The token the browser holds is an HS256 JWT carrying the identity
// projection and the bearer credential; liveness is decided by the backing
// repository, so destroying a session invalidates every copy of its token.
type SessionService struct {
	repo      ports.SessionRepository
	jwtSecret string
}

func NewSessionService(repo ports.SessionRepository, jwtSecret string) *SessionService {
	return &SessionService{repo: repo, jwtSecret: jwtSecret}
}

func (s *SessionService) Create(ctx context.Context, identity domain.Identity, credential, supersedeToken string) (string, domain.Session, error) {
	// Last-write-wins: at most one live session per browser context.
	if old, ok := s.parseID(supersedeToken); ok {
		if err := s.repo.Delete(ctx, old); err != nil {
			return "", domain.Session{}, err
		}
	}

	session := domain.Session{
		ID:         uuid.NewString(),
		Identity:   identity,
		Credential: credential,
		IssuedAt:   time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return "", domain.Session{}, err
	}

	token, err := s.sign(session)
	if err != nil {
		return "", domain.Session{}, err
	}
	return token, session, nil
}

func (s *SessionService) Read(ctx context.Context, token string) (domain.Session, error) {
	id, ok := s.parseID(token)
	if !ok {
		// Tampered or malformed claims degrade to "unauthenticated".
		return domain.Session{}, domain.ErrNoSession
	}

	session, err := s.repo.Find(ctx, id)
	if err == nil {
		return session, nil
	}
	if err != domain.ErrNoSession {
		return domain.Session{}, err
	}

	expired, terr := s.repo.ConsumeExpired(ctx, id)
	if terr == nil && expired {
		return domain.Session{}, domain.ErrSessionExpired
	}
	return domain.Session{}, domain.ErrNoSession
}

func (s *SessionService) Refresh(ctx context.Context, token string) (string, error) {
	session, err := s.Read(ctx, token)
	if err != nil {
		return "", err
	}
	session.IssuedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, session); err != nil {
		return "", err
	}
	return s.sign(session)
}

func (s *SessionService) Destroy(ctx context.Context, token string) error {
	id, ok := s.parseID(token)
	if !ok {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func (s *SessionService) DestroyByID(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *SessionService) ExpireByID(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.repo.MarkExpired(ctx, id)
}

func (s *SessionService) sign(session domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"jti":        session.ID,
		"sub":        session.Identity.ID,
		"name":       session.Identity.Name,
		"email":      session.Identity.Email,
		"role":       session.Identity.Role,
		"verified":   session.Identity.Verified,
		"active":     session.Identity.Active,
		"credential": session.Credential,
		"iat":        session.IssuedAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// parseID validates the token signature and extracts the session ID.
func (s *SessionService) parseID(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", false
	}

	id, _ := claims["jti"].(string)
	return id, id != ""
}
