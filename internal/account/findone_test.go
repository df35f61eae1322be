package account

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOneByEmail(t *testing.T) {
	e := newEnv(&User{ID: "u1", Username: "ada", Email: "ada@example.org", Password: "hashed:x"})

	c, rec := request(t, http.MethodGet, "/users/lookup?email=ada@example.org", nil)
	require.NoError(t, e.handler.FindOne(c))
	require.Equal(t, http.StatusOK, rec.Code)

	user, ok := decode(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", user["username"])
	assert.NotContains(t, user, "password")
}

func TestFindOneByUsername(t *testing.T) {
	e := newEnv(&User{ID: "u1", Username: "ada", Email: "ada@example.org"})

	c, rec := request(t, http.MethodGet, "/users/lookup?username=ada", nil)
	require.NoError(t, e.handler.FindOne(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFindOneUnknownIsNull(t *testing.T) {
	e := newEnv()

	c, rec := request(t, http.MethodGet, "/users/lookup?email=ghost@example.org", nil)
	require.NoError(t, e.handler.FindOne(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["user"])
}

func TestFindOneEmptyQuery(t *testing.T) {
	e := newEnv(&User{ID: "u1", Email: "ada@example.org"})

	c, rec := request(t, http.MethodGet, "/users/lookup", nil)
	require.NoError(t, e.handler.FindOne(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty query", decode(t, rec)["message"])

	// the store was never consulted
	assert.Zero(t, e.store.lookups)
}
