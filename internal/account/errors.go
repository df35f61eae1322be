package account

import (
	"errors"
	"fmt"
)

// Tagged failure classes surfaced by the store and the handlers. Every
// request failure maps onto exactly one of these.
var (
	ErrDuplicate            = errors.New("duplicate key")
	ErrNotFound             = errors.New("user not found")
	ErrUnauthorized         = errors.New("User is not logged in")
	ErrForbidden            = errors.New("User is not authorized")
	ErrAuthenticationFailed = errors.New("Invalid username or password")
	ErrDeliveryFailed       = errors.New("unable to send email")
)

// ValidationError is a field-level failure raised before any persistence.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError carries the database error code for failures that are neither
// duplicates nor validation problems.
type StoreError struct {
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error, code=%s: %v", e.Code, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorMessage renders a store or validation failure as the short
// human-readable message returned to clients.
func ErrorMessage(err error) string {
	if errors.Is(err, ErrDuplicate) {
		return "Username or Email already exists"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *StoreError
	if errors.As(err, &se) {
		return "database error, code=" + se.Code
	}
	return err.Error()
}
