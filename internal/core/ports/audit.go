package ports

import (
	"context"
	"time"
)

// Audit event kinds.
const (
	AuditLoginSuccess    = "login_success"
	AuditLoginFailure    = "login_failure"
	AuditLogout          = "logout"
	AuditSessionExpired  = "session_expired"
	AuditSessionRevoked  = "session_revoked"
	AuditUpstreamReject  = "upstream_401"
	AuditStorefrontLeave = "storefront_teardown"
)

// AuditEvent records one authentication lifecycle action.
type AuditEvent struct {
	Kind      string    `json:"kind"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// AuditRecorder accepts events for asynchronous persistence. Record must
// never block the request path.
type AuditRecorder interface {
	Record(event AuditEvent)
}

// AuditRepository is the persistence sink for audit events.
type AuditRepository interface {
	Append(ctx context.Context, event AuditEvent) error
}
