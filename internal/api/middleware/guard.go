package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/core/domain"
)

// Guard is the view-level route guard attached to each protected view. It
// re-runs the policy decision, then narrows by the view's allowed role set.
// Denied-but-authenticated actors land on the generic dashboard home, not
// their role home: the check is per-view, not global.
func Guard(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, hasSession := SessionFrom(c)

			decision := domain.Decide(hasSession, sess.Identity.Role, c.Request().URL.Path)
			if decision.Outcome != domain.Allow {
				return c.Redirect(http.StatusFound, decision.Location)
			}

			if _, ok := allowed[sess.Identity.Role]; !ok {
				return c.Redirect(http.StatusFound, domain.PathDashboard)
			}
			return next(c)
		}
	}
}
