package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/metrics"
	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// Forwarder relays a request to the ERP backend.
type Forwarder interface {
	Forward(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader, bearer string) (*http.Response, error)
}

// ProxyHandler relays /api/* traffic upstream with the session's bearer
// credential attached. An upstream 401 means the credential is no longer
// honored: the session is invalidated and the client hard-redirected to
// login, independent of any route guard.
type ProxyHandler struct {
	backend  Forwarder
	sessions ports.SessionStore
	monitor  SessionMonitor
	audit    ports.AuditRecorder
}

func NewProxyHandler(backend Forwarder, sessions ports.SessionStore, monitor SessionMonitor, audit ports.AuditRecorder) *ProxyHandler {
	return &ProxyHandler{backend: backend, sessions: sessions, monitor: monitor, audit: audit}
}

// Relay handles ANY /api/*.
func (h *ProxyHandler) Relay(c echo.Context) error {
	req := c.Request()
	sess, ok := middleware.SessionFrom(c)

	// No session means no credential; the request goes upstream
	// unauthenticated and the backend rejects it itself.
	bearer := ""
	if ok {
		bearer = sess.Credential
	}

	path := strings.TrimPrefix(req.URL.Path, "/api")
	start := time.Now()
	res, err := h.backend.Forward(req.Context(), req.Method, path, c.QueryParams(), req.Header, req.Body, bearer)
	if err != nil {
		return domain.ErrBackendUnavailable
	}
	defer res.Body.Close()
	metrics.UpstreamRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	if res.StatusCode == http.StatusUnauthorized {
		metrics.UpstreamRejectionsTotal.Inc()
		if ok {
			if err := h.sessions.DestroyByID(req.Context(), sess.ID); err != nil {
				return err
			}
			h.monitor.Cancel(sess.ID)
			metrics.SessionsEndedTotal.WithLabelValues("upstream_401").Inc()
			metrics.ActiveSessions.Dec()
			h.audit.Record(ports.AuditEvent{
				Kind:      ports.AuditUpstreamReject,
				Email:     sess.Identity.Email,
				Role:      sess.Identity.Role,
				SessionID: sess.ID,
				At:        time.Now().UTC(),
			})
		}
		middleware.ClearSessionCookie(c)
		return c.Redirect(http.StatusSeeOther, domain.PathLogin)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return c.Stream(res.StatusCode, contentType, res.Body)
}
