package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
	"github.com/minierp/console-gateway/internal/core/service"
	"github.com/minierp/console-gateway/internal/infrastructure/db/memory"
)

type stubVerifier struct {
	identity   domain.Identity
	credential string
	err        error
}

func (v *stubVerifier) Authenticate(_ context.Context, _, _ string) (domain.Identity, string, error) {
	if v.err != nil {
		return domain.Identity{}, "", v.err
	}
	return v.identity, v.credential, nil
}

type stubGateway struct {
	status int
	body   []byte
	err    error
}

func (g *stubGateway) Login(_ context.Context, _, _ string) (domain.Identity, string, error) {
	return domain.Identity{}, "", g.err
}

func (g *stubGateway) Register(_ context.Context, _, _, _, _ string) (int, []byte, error) {
	return g.status, g.body, g.err
}

type stubMonitor struct {
	watched   []string
	cancelled []string
	signalled []string
}

func (m *stubMonitor) Watch(id string) { m.watched = append(m.watched, id) }

func (m *stubMonitor) Signal(id, kind string) bool {
	m.signalled = append(m.signalled, id+":"+kind)
	return service.QualifyingSignal(kind)
}

func (m *stubMonitor) Cancel(id string) { m.cancelled = append(m.cancelled, id) }

type stubAudit struct {
	events []ports.AuditEvent
}

func (a *stubAudit) Record(e ports.AuditEvent) { a.events = append(a.events, e) }

func (a *stubAudit) kinds() []string {
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

func newSessions() ports.SessionStore {
	return service.NewSessionService(memory.NewSessionRepository(), "test-secret")
}

func identityWithRole(role string) domain.Identity {
	return domain.Identity{
		ID:       "u-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		Role:     role,
		Verified: true,
		Active:   true,
	}
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLogin_ManagerLandsOnDashboard(t *testing.T) {
	verifier := &stubVerifier{identity: identityWithRole(domain.RoleManager), credential: "bearer-abc"}
	monitor := &stubMonitor{}
	audit := &stubAudit{}
	h := NewAuthHandler(verifier, newSessions(), &stubGateway{}, monitor, audit)

	rec := postLogin(t, h, `{"email":"alice@example.com","password":"pass123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token    string            `json:"token"`
		User     domain.Projection `json:"user"`
		Redirect string            `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Redirect != domain.PathDashboard {
		t.Fatalf("expected redirect %s, got %s", domain.PathDashboard, resp.Redirect)
	}
	if resp.Token == "" {
		t.Fatalf("expected session token in response")
	}
	if resp.User.Role != domain.RoleManager {
		t.Fatalf("unexpected projected role: %s", resp.User.Role)
	}
	if len(monitor.watched) != 1 {
		t.Fatalf("expected inactivity watch started, got %v", monitor.watched)
	}

	cookieSet := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie && cookie.Value != "" {
			cookieSet = true
			if !cookie.HttpOnly {
				t.Fatalf("session cookie must be HttpOnly")
			}
		}
	}
	if !cookieSet {
		t.Fatalf("session cookie not set")
	}

	if len(audit.events) != 1 || audit.events[0].Kind != ports.AuditLoginSuccess {
		t.Fatalf("expected login_success audit event, got %v", audit.kinds())
	}
}

func TestLogin_CustomerLandsOnStorefront(t *testing.T) {
	verifier := &stubVerifier{identity: identityWithRole(domain.RoleCustomer), credential: "bearer-abc"}
	h := NewAuthHandler(verifier, newSessions(), &stubGateway{}, &stubMonitor{}, &stubAudit{})

	rec := postLogin(t, h, `{"email":"alice@example.com","password":"pass123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Redirect != domain.PathStorefront {
		t.Fatalf("customer must land on %s, got %s", domain.PathStorefront, resp.Redirect)
	}
}

func TestLogin_UnverifiedGetsVerificationPrompt(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrUnverifiedAccount}
	audit := &stubAudit{}
	h := NewAuthHandler(verifier, newSessions(), &stubGateway{}, &stubMonitor{}, audit)

	rec := postLogin(t, h, `{"email":"alice@example.com","password":"pass123"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(strings.ToLower(body), "verify") {
		t.Fatalf("expected verification prompt, got %s", body)
	}
	if strings.Contains(body, msgInvalidCredentials) {
		t.Fatalf("unverified account shown the invalid-credentials message")
	}
	if len(audit.events) != 1 || audit.events[0].Kind != ports.AuditLoginFailure {
		t.Fatalf("expected login_failure audit event, got %v", audit.kinds())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrInvalidCredentials}
	h := NewAuthHandler(verifier, newSessions(), &stubGateway{}, &stubMonitor{}, &stubAudit{})

	rec := postLogin(t, h, `{"email":"alice@example.com","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgInvalidCredentials) {
		t.Fatalf("expected invalid-credentials message, got %s", rec.Body.String())
	}
}

func TestLogin_BackendDown(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrBackendUnavailable}
	h := NewAuthHandler(verifier, newSessions(), &stubGateway{}, &stubMonitor{}, &stubAudit{})

	rec := postLogin(t, h, `{"email":"alice@example.com","password":"pass123"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestLogin_RejectsMalformedEmail(t *testing.T) {
	h := NewAuthHandler(&stubVerifier{}, newSessions(), &stubGateway{}, &stubMonitor{}, &stubAudit{})

	rec := postLogin(t, h, `{"email":"not-an-email","password":"pass123"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoginPage_ExpiredNoticeShownOnce(t *testing.T) {
	h := NewAuthHandler(&stubVerifier{}, newSessions(), &stubGateway{}, &stubMonitor{}, &stubAudit{})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/login?session=expired", nil)
	rec := httptest.NewRecorder()
	if err := h.LoginPage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("LoginPage error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), msgInactivityNotice) {
		t.Fatalf("expected inactivity notice, got %s", rec.Body.String())
	}

	// A plain navigation carries no marker, so no notice.
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	rec = httptest.NewRecorder()
	if err := h.LoginPage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("LoginPage error: %v", err)
	}
	if strings.Contains(rec.Body.String(), msgInactivityNotice) {
		t.Fatalf("notice shown without the expiry marker")
	}
}

func TestLogout_DestroysSessionAndCancelsCountdown(t *testing.T) {
	sessions := newSessions()
	monitor := &stubMonitor{}
	h := NewAuthHandler(&stubVerifier{}, sessions, &stubGateway{}, monitor, &stubAudit{})

	token, created, err := sessions.Create(context.Background(), identityWithRole(domain.RoleManager), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := middleware.Session(sessions)(h.Logout)
	if err := chain(c); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != domain.PathLogin {
		t.Fatalf("expected redirect to %s, got %s", domain.PathLogin, loc)
	}
	if len(monitor.cancelled) != 1 || monitor.cancelled[0] != created.ID {
		t.Fatalf("expected countdown cancelled for %s, got %v", created.ID, monitor.cancelled)
	}
	if _, err := sessions.Read(context.Background(), token); err != domain.ErrNoSession {
		t.Fatalf("expected session destroyed, got %v", err)
	}

	// Logging out twice stays quiet: the second request has no session.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	if err := chain(e.NewContext(req, rec)); err != nil {
		t.Fatalf("second Logout error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 on repeat logout, got %d", rec.Code)
	}
}
