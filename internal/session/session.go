// Package session is the session authority: it authenticates credentials,
// establishes and destroys the logged-in session (a signed JWT cookie) and
// attaches the current caller to each request.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/classport/accounts/internal/account"
)

const (
	// CookieName carries the signed session token.
	CookieName = "account_session"

	userContextKey = "session.user"
)

type Sessions struct {
	store  account.Store
	secret []byte
	ttl    time.Duration
	secure bool
	log    *zap.Logger
}

func New(store account.Store, secret string, ttl time.Duration, secure bool, log *zap.Logger) *Sessions {
	return &Sessions{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		log:    log,
	}
}

// Authenticate verifies credentials against the store. The login may be an
// email or a username; the failure message never says which part was wrong.
func (s *Sessions) Authenticate(ctx context.Context, login, password string) (*account.User, error) {
	if login == "" || password == "" {
		return nil, account.ErrAuthenticationFailed
	}

	user, err := s.store.ByEmail(ctx, login)
	if errors.Is(err, account.ErrNotFound) {
		user, err = s.store.ByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, account.ErrAuthenticationFailed
		}
		return nil, err
	}

	if !s.store.Authenticate(user, password) {
		return nil, account.ErrAuthenticationFailed
	}
	return user, nil
}

// Login issues the session cookie for u and makes it the current caller for
// the rest of this request.
func (s *Sessions) Login(c echo.Context, u *account.User) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(userContextKey, u)
	return nil
}

// Logout expires the session cookie and clears the current caller.
func (s *Sessions) Logout(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(userContextKey, nil)
}

// CurrentUser returns the caller attached by Middleware or Login, or nil.
func (s *Sessions) CurrentUser(c echo.Context) *account.User {
	u, _ := c.Get(userContextKey).(*account.User)
	return u
}

func (s *Sessions) IsAuthenticated(c echo.Context) bool {
	return s.CurrentUser(c) != nil
}

// Middleware resolves the session cookie into a user and attaches it to the
// request. Requests without a valid session proceed unauthenticated; the
// route guards decide whether that matters.
func (s *Sessions) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		userID, err := s.parseToken(cookie.Value)
		if err != nil {
			return next(c)
		}

		user, err := s.store.ByID(c.Request().Context(), userID)
		if err != nil {
			if !errors.Is(err, account.ErrNotFound) {
				s.log.Warn("session user lookup failed", zap.Error(err))
			}
			return next(c)
		}

		user.Sanitize()
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (s *Sessions) parseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session claims")
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return "", errors.New("missing session subject")
	}
	return id, nil
}
