package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/metrics"
	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// SessionMonitor is the slice of the inactivity monitor handlers drive.
type SessionMonitor interface {
	Watch(sessionID string)
	Signal(sessionID, kind string) bool
	Cancel(sessionID string)
}

// User-facing messages. The unverified case must never read like a bad
// password: it has its own corrective action.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgUnverified         = "Please verify your email before logging in. Check your inbox for the verification link."
	msgInactivityNotice   = "You were logged out due to inactivity"
)

type AuthHandler struct {
	verifier ports.AuthService
	sessions ports.SessionStore
	gateway  ports.AuthGateway
	monitor  SessionMonitor
	audit    ports.AuditRecorder
}

func NewAuthHandler(verifier ports.AuthService, sessions ports.SessionStore, gateway ports.AuthGateway, monitor SessionMonitor, audit ports.AuditRecorder) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		sessions: sessions,
		gateway:  gateway,
		monitor:  monitor,
		audit:    audit,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager staff customer"`
}

type loginResponse struct {
	Token    string            `json:"token"`
	User     domain.Projection `json:"user"`
	Redirect string            `json:"redirect"`
}

type loginPageResponse struct {
	View   string `json:"view"`
	Notice string `json:"notice,omitempty"`
}

// LoginPage serves the login view data.
//
// @Summary      Login view
// @Tags         auth
// @Produce      json
// @Param        session  query     string  false  "expired: show the inactivity notice"
// @Success      200      {object}  loginPageResponse
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	resp := loginPageResponse{View: "login"}
	if c.QueryParam("session") == "expired" {
		resp.Notice = msgInactivityNotice
	}
	return c.JSON(http.StatusOK, resp)
}

// Login verifies credentials against the backend and establishes a signed
// session. The response names the role home the client should land on.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	identity, credential, err := h.verifier.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.audit.Record(ports.AuditEvent{
			Kind:   ports.AuditLoginFailure,
			Email:  req.Email,
			Reason: err.Error(),
			At:     time.Now().UTC(),
		})

		switch {
		case errors.Is(err, domain.ErrUnverifiedAccount):
			metrics.LoginsTotal.WithLabelValues("unverified").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": msgUnverified})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": msgInvalidCredentials})
		default:
			metrics.LoginsTotal.WithLabelValues("backend_error").Inc()
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "authentication backend unavailable"})
		}
	}

	// A fresh login supersedes whatever session this browser context held.
	if old, ok := middleware.SessionFrom(c); ok {
		h.monitor.Cancel(old.ID)
		metrics.SessionsEndedTotal.WithLabelValues("superseded").Inc()
		metrics.ActiveSessions.Dec()
	}

	token, sess, err := h.sessions.Create(ctx, identity, credential, middleware.TokenFrom(c))
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, token)
	h.monitor.Watch(sess.ID)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.ActiveSessions.Inc()
	h.audit.Record(ports.AuditEvent{
		Kind:      ports.AuditLoginSuccess,
		Email:     identity.Email,
		Role:      identity.Role,
		SessionID: sess.ID,
		At:        time.Now().UTC(),
	})

	return c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		User:     sess.Project(),
		Redirect: domain.RoleHome(identity.Role),
	})
}

// Register forwards a registration to the backend, which owns the user
// record and the verification mail.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	status, body, err := h.gateway.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "authentication backend unavailable"})
	}
	return c.JSONBlob(status, body)
}

// Logout destroys the session, cancels its inactivity countdown, and sends
// the browser back to the login page.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sess, ok := middleware.SessionFrom(c); ok {
		if err := h.sessions.Destroy(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
			return err
		}
		h.monitor.Cancel(sess.ID)
		metrics.SessionsEndedTotal.WithLabelValues("logout").Inc()
		metrics.ActiveSessions.Dec()
		h.audit.Record(ports.AuditEvent{
			Kind:      ports.AuditLogout,
			Email:     sess.Identity.Email,
			Role:      sess.Identity.Role,
			SessionID: sess.ID,
			At:        time.Now().UTC(),
		})
	}

	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, domain.PathLogin)
}
