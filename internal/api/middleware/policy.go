package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/metrics"
	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// Monitor is the slice of the inactivity monitor the policy layer needs.
type Monitor interface {
	Cancel(sessionID string)
}

// Policy enforces the route policy engine on every navigation, before any
// handler renders. It also owns the storefront teardown rule: reaching the
// public storefront with a live session destroys that session immediately.
func Policy(store ports.SessionStore, monitor Monitor, audit ports.AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			sess, hasSession := SessionFrom(c)

			if hasSession && path == domain.PathStorefront && c.Request().Method == http.MethodGet {
				// Authenticated actor observed on the public surface: tear
				// the session down with no reason marker.
				if err := store.Destroy(c.Request().Context(), TokenFrom(c)); err != nil {
					return err
				}
				monitor.Cancel(sess.ID)
				ClearSessionCookie(c)
				audit.Record(ports.AuditEvent{
					Kind:      ports.AuditStorefrontLeave,
					Email:     sess.Identity.Email,
					Role:      sess.Identity.Role,
					SessionID: sess.ID,
					At:        time.Now().UTC(),
				})
				metrics.SessionsEndedTotal.WithLabelValues("storefront").Inc()
				metrics.ActiveSessions.Dec()
				return c.Redirect(http.StatusFound, domain.PathLogin)
			}

			decision := domain.Decide(hasSession, sess.Identity.Role, path)
			switch decision.Outcome {
			case domain.RedirectLogin:
				metrics.PolicyDecisionsTotal.WithLabelValues("redirect_login").Inc()
				location := decision.Location
				if ExpiredFrom(c) {
					location += "?session=expired"
				}
				return c.Redirect(http.StatusFound, location)
			case domain.RedirectRoleHome:
				metrics.PolicyDecisionsTotal.WithLabelValues("redirect_role_home").Inc()
				return c.Redirect(http.StatusFound, decision.Location)
			}

			metrics.PolicyDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}
