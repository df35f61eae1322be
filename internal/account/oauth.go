package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"
)

const signinPage = "/signin"

// ===== OAuth =====
// GET /auth/oauth/:provider kicks off the provider flow;
// GET /auth/oauth/:provider/callback completes it. Any failure lands the
// browser back on the sign-in page rather than an error payload.

func (h *Handler) OAuthBegin(c echo.Context) error {
	gothic.BeginAuthHandler(c.Response(), withProvider(c))
	return nil
}

func (h *Handler) OAuthCallback(c echo.Context) error {
	gothUser, err := gothic.CompleteUserAuth(c.Response(), withProvider(c))
	if err != nil {
		h.log.Debug("oauth verification failed",
			zap.String("provider", c.Param("provider")), zap.Error(err))
		return c.Redirect(http.StatusFound, signinPage)
	}

	user, err := h.findOrCreateOAuthUser(c.Request().Context(), gothUser)
	if err != nil {
		h.log.Error("oauth user resolution failed", zap.Error(err))
		return c.Redirect(http.StatusFound, signinPage)
	}

	user.Sanitize()
	if err := h.sessions.Login(c, user); err != nil {
		return c.Redirect(http.StatusFound, signinPage)
	}

	target := c.QueryParam("redirect_to")
	if target == "" || target[0] != '/' {
		target = "/"
	}
	return c.Redirect(http.StatusFound, target)
}

// findOrCreateOAuthUser looks the account up by email and provisions a new
// record on first sign-in with that provider.
func (h *Handler) findOrCreateOAuthUser(ctx context.Context, gu goth.User) (*User, error) {
	user, err := h.store.ByEmail(ctx, gu.Email)
	switch {
	case errors.Is(err, ErrNotFound):
		user = &User{
			Username:  gu.NickName,
			Email:     gu.Email,
			FirstName: gu.FirstName,
			LastName:  gu.LastName,
			Provider:  gu.Provider,
		}
		if user.Username == "" {
			user.Username = gu.Email
		}
		user.RefreshDisplayName()
		if user.DisplayName == " " {
			user.DisplayName = gu.Name
		}
		if err := h.store.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	default:
		return user, nil
	}
}

// withProvider makes the path parameter visible to gothic, which reads the
// provider name from the URL query.
func withProvider(c echo.Context) *http.Request {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", c.Param("provider"))
	req.URL.RawQuery = q.Encode()
	return req
}
