package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	VerifyPassword  string `json:"verifyPassword"`
}

// ===== ChangePassword =====
// POST /auth/password
//
// The authenticated path: the current password must verify before the new
// one is accepted.
func (h *Handler) ChangePassword(c echo.Context) error {
	caller := h.sessions.CurrentUser(c)
	if caller == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User is not signed in"})
	}

	req := new(ChangePasswordRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	ctx := c.Request().Context()

	user, err := h.store.ByID(ctx, caller.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User is not found"})
	}

	if !h.store.Authenticate(user, req.CurrentPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Current password is incorrect"})
	}
	if req.NewPassword != req.VerifyPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Passwords do not match"})
	}

	if err := h.store.SetPassword(ctx, user, req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	user.Sanitize()
	if err := h.sessions.Login(c, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// ===== ChangeOneTimePassword =====
// POST /auth/password/onetime
//
// Completion of the forgot-password flow: the caller signed in with a
// one-time token, so there is no current password to check.
func (h *Handler) ChangeOneTimePassword(c echo.Context) error {
	caller := h.sessions.CurrentUser(c)
	if caller == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User is not signed in"})
	}

	req := new(ChangePasswordRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	ctx := c.Request().Context()

	user, err := h.store.ByID(ctx, caller.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User is not found"})
	}

	if req.NewPassword != req.VerifyPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Passwords do not match"})
	}

	if err := h.store.SetPassword(ctx, user, req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	user.Sanitize()
	if err := h.sessions.Login(c, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
