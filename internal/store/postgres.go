// Package store is the PostgreSQL credential store. It owns password
// hashing and maps driver failures onto the account error taxonomy.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/classport/accounts/internal/account"
)

// pg error code for unique_violation
const uniqueViolation = "23505"

// DefaultRole is applied on create when the record carries no roles.
// Role escalation never happens through this store.
const DefaultRole = "user"

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const userColumns = `id, username, email, first_name, last_name, display_name,
	title, affiliated, school_urn, school_name, school_addr1, school_addr2,
	school_addr3, school_town, school_postcode, provider, roles, password,
	salt, reset_password_token, reset_password_expires, created, updated`

func (s *Postgres) ByEmail(ctx context.Context, email string) (*account.User, error) {
	return s.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Postgres) ByUsername(ctx context.Context, username string) (*account.User, error) {
	return s.one(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *Postgres) ByID(ctx context.Context, id string) (*account.User, error) {
	return s.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Postgres) one(ctx context.Context, query string, arg any) (*account.User, error) {
	u := &account.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.DisplayName,
		&u.Title, &u.Affiliated, &u.SchoolURN, &u.SchoolName, &u.SchoolAddr1,
		&u.SchoolAddr2, &u.SchoolAddr3, &u.SchoolTown, &u.SchoolPostCode,
		&u.Provider, &u.Roles, &u.Password, &u.Salt,
		&u.ResetPasswordToken, &u.ResetPasswordExpires, &u.Created, &u.Updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, mapError(err)
	}
	return u, nil
}

// Create inserts a new user. The plaintext on u.Password is hashed here;
// the default role is applied when none is set.
func (s *Postgres) Create(ctx context.Context, u *account.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{DefaultRole}
	}
	now := time.Now()
	u.Created = now
	u.Updated = now

	if u.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hashed)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.DisplayName,
		u.Title, u.Affiliated, u.SchoolURN, u.SchoolName, u.SchoolAddr1,
		u.SchoolAddr2, u.SchoolAddr3, u.SchoolTown, u.SchoolPostCode,
		u.Provider, u.Roles, u.Password, u.Salt,
		u.ResetPasswordToken, u.ResetPasswordExpires, u.Created, u.Updated,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Save persists the mutable profile and reset-token state of an existing
// row. Password, salt and roles are deliberately not written here.
func (s *Postgres) Save(ctx context.Context, u *account.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			username = $2, email = $3, first_name = $4, last_name = $5,
			display_name = $6, title = $7, affiliated = $8,
			school_urn = $9, school_name = $10, school_addr1 = $11,
			school_addr2 = $12, school_addr3 = $13, school_town = $14,
			school_postcode = $15,
			reset_password_token = $16, reset_password_expires = $17,
			updated = $18
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName,
		u.DisplayName, u.Title, u.Affiliated,
		u.SchoolURN, u.SchoolName, u.SchoolAddr1,
		u.SchoolAddr2, u.SchoolAddr3, u.SchoolTown, u.SchoolPostCode,
		u.ResetPasswordToken, u.ResetPasswordExpires, u.Updated,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// SetPassword hashes plaintext and writes it for the given user.
func (s *Postgres) SetPassword(ctx context.Context, u *account.User, plaintext string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password = $2, updated = $3 WHERE id = $1`,
		u.ID, string(hashed), time.Now(),
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	u.Password = string(hashed)
	return nil
}

// Authenticate verifies a plaintext candidate against the stored hash.
func (s *Postgres) Authenticate(u *account.User, password string) bool {
	if u == nil || u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", account.ErrDuplicate, pgErr.ConstraintName)
		}
		return &account.StoreError{Code: pgErr.Code, Err: err}
	}
	return err
}
