package account

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Username or Email already exists", ErrorMessage(ErrDuplicate))
	assert.Equal(t, "Username or Email already exists",
		ErrorMessage(fmt.Errorf("%w: users_email_key", ErrDuplicate)))

	assert.Equal(t, "Email is required",
		ErrorMessage(&ValidationError{Field: "email", Message: "Email is required"}))

	assert.Equal(t, "database error, code=53300",
		ErrorMessage(&StoreError{Code: "53300", Err: errors.New("too many connections")}))

	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}
