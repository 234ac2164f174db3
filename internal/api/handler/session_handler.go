package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/metrics"
	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/ports"
)

// SessionHandler owns the two client beacons of the session lifecycle: the
// activity signal that keeps a session alive and the best-effort teardown
// fired when the tab or window closes.
type SessionHandler struct {
	sessions ports.SessionStore
	monitor  SessionMonitor
	audit    ports.AuditRecorder
}

func NewSessionHandler(sessions ports.SessionStore, monitor SessionMonitor, audit ports.AuditRecorder) *SessionHandler {
	return &SessionHandler{sessions: sessions, monitor: monitor, audit: audit}
}

type activityRequest struct {
	Signal string `json:"signal"`
}

type activityResponse struct {
	Accepted bool `json:"accepted"`
}

// Activity resets the inactivity countdown for a qualifying user-activity
// signal. Unknown signal kinds and beacons without a session are dropped
// silently; the beacon is advisory, never an error.
//
// @Summary      Report user activity
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      activityRequest  true  "Activity signal"
// @Success      202   {object}  activityResponse
// @Router       /session/activity [post]
func (h *SessionHandler) Activity(c echo.Context) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}

	var req activityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	accepted := h.monitor.Signal(sess.ID, req.Signal)
	return c.JSON(http.StatusAccepted, activityResponse{Accepted: accepted})
}

// Close is the explicit session-teardown hook for tab/window close. It is
// best-effort by nature: the response is a bare 204 with no redirect, since
// the page issuing it is already gone.
//
// @Summary      Silent session teardown
// @Tags         session
// @Success      204
// @Router       /session/close [post]
func (h *SessionHandler) Close(c echo.Context) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.sessions.Destroy(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		return err
	}
	h.monitor.Cancel(sess.ID)
	middleware.ClearSessionCookie(c)
	metrics.SessionsEndedTotal.WithLabelValues("close").Inc()
	metrics.ActiveSessions.Dec()
	h.audit.Record(ports.AuditEvent{
		Kind:      ports.AuditSessionRevoked,
		Email:     sess.Identity.Email,
		Role:      sess.Identity.Role,
		SessionID: sess.ID,
		Reason:    "window closed",
		At:        time.Now().UTC(),
	})

	return c.NoContent(http.StatusNoContent)
}
