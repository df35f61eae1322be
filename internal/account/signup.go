package account

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignupRequest deliberately has no roles field: role assignment is never
// accepted from clients, the store applies the default on create.
type SignupRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Title      string  `json:"title"`
	Affiliated string  `json:"affiliated"`
	School     *School `json:"school"`
}

// ===== Signup =====
// POST /auth/signup
func (h *Handler) Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	user := &User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Title:      req.Title,
		Affiliated: req.Affiliated,
		Provider:   "local",
	}
	user.RefreshDisplayName()
	if req.School != nil {
		user.ApplySchool(req.School)
	}

	ctx := c.Request().Context()
	if err := h.store.Create(ctx, user); err != nil {
		h.log.Debug("signup failed", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	// Remove sensitive data before login
	user.Sanitize()

	if err := h.sessions.Login(c, user); err != nil {
		h.log.Error("session login after signup failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}

	if err := h.mailer.EnqueueWelcome(user.ID, user.Email, user.DisplayName); err != nil {
		h.log.Warn("welcome email enqueue failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, user)
}
