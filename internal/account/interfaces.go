package account

import (
	"context"

	"github.com/labstack/echo/v4"
)

// Store is the credential store the controller persists users through.
// Password hashing happens inside the store: Create hashes the plaintext on
// User.Password, SetPassword replaces it, and Save never touches it.
type Store interface {
	ByEmail(ctx context.Context, email string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	SetPassword(ctx context.Context, u *User, plaintext string) error
	Authenticate(u *User, password string) bool
}

// SessionAuthority establishes and tears down the logged-in session and
// answers who the current caller is.
type SessionAuthority interface {
	Authenticate(ctx context.Context, login, password string) (*User, error)
	Login(c echo.Context, u *User) error
	Logout(c echo.Context)
	CurrentUser(c echo.Context) *User
	IsAuthenticated(c echo.Context) bool
}

// Mailer delivers account email. SendOneTimePassword blocks until the
// message is handed to the provider; EnqueueWelcome only queues.
type Mailer interface {
	SendOneTimePassword(ctx context.Context, to, token string) error
	EnqueueWelcome(userID, email, name string) error
}
