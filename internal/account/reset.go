package account

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// one-time tokens stay valid for an hour
const resetTokenValidity = time.Hour

type ResetPasswordRequest struct {
	ResetEmail string `json:"resetEmail"`
}

func makeOneTimePassword() string {
	b := make([]byte, 12)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// ===== ResetPassword =====
// POST /auth/password/forgot
//
// The token is persisted before the mail goes out and stays valid whatever
// the delivery outcome; the response only reports delivery.
func (h *Handler) ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := c.Bind(req); err != nil || req.ResetEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no email in request"})
	}

	ctx := c.Request().Context()

	user, err := h.store.ByEmail(ctx, req.ResetEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "email not recognised"})
		}
		h.log.Error("reset lookup failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Lookup failure on " + req.ResetEmail})
	}

	user.ResetPasswordToken = makeOneTimePassword()
	user.ResetPasswordExpires = time.Now().Add(resetTokenValidity)

	if err := h.store.Save(ctx, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	user.Sanitize()

	if err := h.mailer.SendOneTimePassword(ctx, user.Email, user.ResetPasswordToken); err != nil {
		h.log.Error("one-time password mail failed", zap.String("email", user.Email), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unable to send email"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "email sent"})
}
