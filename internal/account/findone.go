package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ===== FindOne =====
// GET /users/lookup?email=...|username=...
//
// Email wins when both are supplied. With neither, the store is never
// touched.
func (h *Handler) FindOne(c echo.Context) error {
	email := c.QueryParam("email")
	username := c.QueryParam("username")

	ctx := c.Request().Context()

	var (
		user *User
		err  error
		key  string
	)
	switch {
	case email != "":
		key = email
		user, err = h.store.ByEmail(ctx, email)
	case username != "":
		key = username
		user, err = h.store.ByUsername(ctx, username)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "empty query"})
	}

	if err != nil && !errors.Is(err, ErrNotFound) {
		h.log.Error("user lookup failed", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Lookup failure on " + key})
	}
	if user != nil {
		user.Sanitize()
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
