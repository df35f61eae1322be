// Package middleware holds the route guards: login requirement, role
// authorization and id-based user loading.
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/classport/accounts/internal/account"
)

// Guard bundles the collaborators the route guards need. Injected, never
// global.
type Guard struct {
	sessions account.SessionAuthority
	store    account.Store
	log      *zap.Logger
}

func NewGuard(sessions account.SessionAuthority, store account.Store, log *zap.Logger) *Guard {
	return &Guard{sessions: sessions, store: store, log: log}
}

// RequiresLogin rejects unauthenticated callers with a 401.
func (g *Guard) RequiresLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !g.sessions.IsAuthenticated(c) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "User is not logged in"})
		}
		return next(c)
	}
}

// HasAuthorization requires login and then a non-empty intersection between
// the caller's roles and the allowed ones.
// Usage: route(..., guard.HasAuthorization("admin"))
func (g *Guard) HasAuthorization(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return g.RequiresLogin(func(c echo.Context) error {
			caller := g.sessions.CurrentUser(c)
			if !caller.HasAnyRole(roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "User is not authorized"})
			}
			return next(c)
		})
	}
}

// UserByID resolves the :id route parameter into a user and attaches it to
// the request context. An unknown id is a plain error, distinct from a
// lookup failure.
func (g *Guard) UserByID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		user, err := g.store.ByID(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return fmt.Errorf("failed to load user %s", id)
			}
			g.log.Error("user load failed", zap.String("id", id), zap.Error(err))
			return err
		}
		user.Sanitize()
		c.Set(account.ProfileContextKey, user)
		return next(c)
	}
}
