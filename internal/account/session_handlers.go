package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ===== Signout =====
// GET /auth/signout
//
// Destroys the session and bounces the browser back to where it came from.
// The cache headers force a page reload so stale user data disappears.
func (h *Handler) Signout(c echo.Context) error {
	h.sessions.Logout(c)

	c.Response().Header().Set("Cache-Control",
		"no-cache, private, no-store, must-revalidate, max-stale=0, post-check=0, pre-check=0")

	target := c.Request().Referer()
	if target == "" {
		target = "/"
	}
	return c.Redirect(http.StatusFound, target)
}

// ===== Me =====
// GET /me
//
// Returns whatever the session layer attached; no store call.
func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.CurrentUser(c))
}
