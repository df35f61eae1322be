package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SigninRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	OneTime  bool   `json:"oneTime"`
}

// ===== Signin =====
// POST /auth/signin
//
// With oneTime set, the supplied password must equal an unexpired
// reset token; the token is consumed before the session is established and
// standard authentication is never attempted as a fallback.
func (h *Handler) Signin(c echo.Context) error {
	req := new(SigninRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.OneTime {
		return h.signinOneTime(c, req)
	}

	login := req.Email
	if login == "" {
		login = req.Username
	}
	user, err := h.sessions.Authenticate(c.Request().Context(), login, req.Password)
	if err != nil {
		h.log.Debug("signin rejected", zap.String("login", login))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	// Remove sensitive data before login
	user.Sanitize()

	if err := h.sessions.Login(c, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) signinOneTime(c echo.Context, req *SigninRequest) error {
	ctx := c.Request().Context()

	user, err := h.store.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid one-time password"})
		}
		h.log.Error("one-time signin lookup failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Lookup failure on " + req.Email})
	}

	if user.ResetPasswordToken == "" ||
		!user.ResetPasswordExpires.After(time.Now()) ||
		user.ResetPasswordToken != req.Password {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid one-time password"})
	}

	// Cancel the token before any session exists; it is good for one
	// sign-in only.
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = time.Unix(0, 0)
	if err := h.store.Save(ctx, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	user.Sanitize()

	if err := h.sessions.Login(c, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}
	return c.JSON(http.StatusOK, user)
}
