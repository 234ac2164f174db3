package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/domain"
)

// ViewHandler serves the view payloads the console shell hydrates from.
// Rendering itself lives client-side; the gateway only decides who may see
// which view and hands over the resolved identity for conditional UI.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

type viewResponse struct {
	View string             `json:"view"`
	User *domain.Projection `json:"user,omitempty"`
}

// Render returns the handler for a named protected view. The guard has
// already run; the session is present by construction.
func (h *ViewHandler) Render(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := viewResponse{View: view}
		if sess, ok := middleware.SessionFrom(c); ok {
			p := sess.Project()
			resp.User = &p
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// Storefront serves the public product listing view. Reaching it with a
// live session never gets this far: the policy middleware tears the
// session down first.
func (h *ViewHandler) Storefront(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{View: "storefront"})
}

// Home serves the public landing view.
func (h *ViewHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{View: "home"})
}
