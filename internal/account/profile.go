package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProfileContextKey is where the UserByID middleware parks the resolved
// user for downstream handlers.
const ProfileContextKey = "profile"

// GET /users/:id (behind UserByID + authorization)
func (h *Handler) Profile(c echo.Context) error {
	user, _ := c.Get(ProfileContextKey).(*User)
	if user == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User is not found"})
	}
	return c.JSON(http.StatusOK, user)
}
