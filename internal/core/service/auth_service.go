package service

import (
	"context"
	"errors"
	"strings"

	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// AuthService is the credential verifier. It delegates the actual check to
// the ERP backend and normalizes the result into a typed outcome. Failed
// attempts are never retried; the user resubmits manually.
type AuthService struct {
	gateway ports.AuthGateway
}

func NewAuthService(gateway ports.AuthGateway) *AuthService {
	return &AuthService{gateway: gateway}
}

// Authenticate verifies an email/password pair against the backend login
// endpoint. On success both an identity payload and an opaque bearer
// credential are required; absence of either is a failure. Upstream
// rejections are classified by status and, for unverified accounts, by a
// case-insensitive "verify" substring in the backend message.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error) {
	if password == "" {
		return domain.Identity{}, "", domain.ErrInvalidCredentials
	}

	identity, credential, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return domain.Identity{}, "", classify(err)
	}

	if identity.ID == "" || credential == "" {
		return domain.Identity{}, "", domain.ErrInvalidCredentials
	}
	return identity, credential, nil
}

func classify(err error) error {
	var rej *ports.RejectedError
	if !errors.As(err, &rej) {
		return domain.ErrBackendUnavailable
	}
	if rej.StatusCode >= 500 {
		return domain.ErrBackendUnavailable
	}
	if strings.Contains(strings.ToLower(rej.Message), "verify") {
		return domain.ErrUnverifiedAccount
	}
	return domain.ErrInvalidCredentials
}
