package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrUnverifiedAccount = errors.New("account email not verified")
var ErrBackendUnavailable = errors.New("authentication backend unavailable")
var ErrNoSession = errors.New("no live session")
var ErrSessionExpired = errors.New("session expired due to inactivity")
var ErrUnauthorized = errors.New("session rejected by backend")

// Identity models the authenticated actor as returned by the ERP backend.
// It is created by the backend on registration and read-only here.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
}

// StaffRole reports whether the role belongs to back-office personnel,
// i.e. anyone allowed past the /protected boundary.
func StaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// RoleHome returns the default landing path for a role. It is total:
// unknown roles land on the storefront, the least privileged surface.
func RoleHome(role string) string {
	if StaffRole(role) {
		return PathDashboard
	}
	return PathStorefront
}

// Session is the live, signed proof of authentication plus the bearer
// credential attached to outbound backend calls.
type Session struct {
	ID         string    `json:"id"`
	Identity   Identity  `json:"identity"`
	Credential string    `json:"-"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Projection is the client-visible view of a session, refreshed on every
// read. It carries everything handlers may branch on and nothing that
// would let a client forge a role upgrade.
type Projection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
}

// Project derives the client-visible view from a session.
func (s Session) Project() Projection {
	return Projection{
		ID:       s.Identity.ID,
		Name:     s.Identity.Name,
		Email:    s.Identity.Email,
		Role:     s.Identity.Role,
		Verified: s.Identity.Verified,
		Active:   s.Identity.Active,
	}
}
