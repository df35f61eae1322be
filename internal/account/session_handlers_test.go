package account

import (
	"context"
	"net/http"
	"testing"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignout(t *testing.T) {
	e := newEnv(&User{ID: "u1", Email: "ada@example.org"})
	signedIn(e, "u1")

	c, rec := request(t, http.MethodGet, "/auth/signout", nil)
	c.Request().Header.Set("Referer", "/settings")

	require.NoError(t, e.handler.Signout(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/settings", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Nil(t, e.sessions.current)
}

func TestSignoutNoReferer(t *testing.T) {
	e := newEnv()

	c, rec := request(t, http.MethodGet, "/auth/signout", nil)
	require.NoError(t, e.handler.Signout(c))
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestMe(t *testing.T) {
	e := newEnv(&User{ID: "u1", Username: "ada", Email: "ada@example.org"})
	signedIn(e, "u1")

	c, rec := request(t, http.MethodGet, "/me", nil)
	require.NoError(t, e.handler.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", decode(t, rec)["username"])
}

func TestMeAnonymous(t *testing.T) {
	e := newEnv()

	c, rec := request(t, http.MethodGet, "/me", nil)
	require.NoError(t, e.handler.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "null", rec.Body.String())
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	e := newEnv()

	gu := goth.User{
		Provider:  "google",
		Email:     "ada@example.org",
		NickName:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	created, err := e.handler.findOrCreateOAuthUser(context.Background(), gu)
	require.NoError(t, err)
	assert.Equal(t, "google", created.Provider)
	assert.Equal(t, "Ada Lovelace", created.DisplayName)

	// second call resolves the same record instead of creating
	again, err := e.handler.findOrCreateOAuthUser(context.Background(), gu)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, e.store.users, 1)
}
