package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// SessionCookie carries the signed session token across navigations.
const SessionCookie = "erp_session"

const (
	ctxSession = "session"
	ctxToken   = "session_token"
	ctxExpired = "session_expired"
)

// Session resolves the signed session token into the request context before
// any policy or guard runs. It never denies by itself: absent, tampered, or
// destroyed tokens simply leave the request unauthenticated.
func Session(store ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			sess, err := store.Read(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(ctxSession, sess)
				c.Set(ctxToken, token)
			case errors.Is(err, domain.ErrSessionExpired):
				// Torn down by the inactivity monitor; remembered for the
				// login redirect so the user learns why.
				c.Set(ctxExpired, true)
			default:
				// Malformed claims or a repository miss degrade to
				// "unauthenticated" rather than failing the request.
			}

			return next(c)
		}
	}
}

// TokenFromRequest extracts the session token from the session cookie or,
// for non-browser clients, from a bearer Authorization header.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SessionFrom returns the resolved session, if any.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(ctxSession).(domain.Session)
	return sess, ok
}

// TokenFrom returns the validated session token, if any.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(ctxToken).(string)
	return token
}

// ExpiredFrom reports whether this request presented a token for a session
// that the inactivity monitor tore down.
func ExpiredFrom(c echo.Context) bool {
	expired, _ := c.Get(ctxExpired).(bool)
	return expired
}

// ClearSessionCookie instructs the browser to drop the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetSessionCookie installs the signed session token for the browser
// context. Session-scoped: no Max-Age, so closing the browser drops it.
func SetSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
