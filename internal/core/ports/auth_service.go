package ports

import (
	"context"

	"github.com/minierp/console-gateway/internal/core/domain"
)

// AuthGateway is the remote ERP backend's authentication surface. The
// gateway owns no user records; it only forwards credentials upstream.
type AuthGateway interface {
	// Login posts the credentials to the backend. A non-2xx response is
	// returned as *RejectedError carrying the upstream message; transport
	// failures come back as plain errors.
	Login(ctx context.Context, email, password string) (domain.Identity, string, error)
	// Register forwards a registration payload and returns the raw upstream
	// status and body for pass-through rendering.
	Register(ctx context.Context, name, email, password, role string) (int, []byte, error)
}

// RejectedError is an upstream HTTP rejection (4xx/5xx) with its message.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string { return e.Message }

// AuthService verifies credentials against the backend and normalizes the
// outcome into an identity plus bearer credential or a typed domain error.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error)
}
