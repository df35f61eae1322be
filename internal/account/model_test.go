package account

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySchool(t *testing.T) {
	u := &User{}
	u.ApplySchool(&School{URN: "1", Name: "Hill Road", Addr1: "a1", Addr2: "a2",
		Addr3: "a3", Town: "Cambridge", PostCode: "CB2"})

	assert.Equal(t, "1", u.SchoolURN)
	assert.Equal(t, "a3", u.SchoolAddr3)
	assert.Equal(t, "CB2", u.SchoolPostCode)

	u.ApplySchool(nil)
	assert.Empty(t, u.SchoolURN)
	assert.Empty(t, u.SchoolName)
	assert.Empty(t, u.SchoolAddr1)
	assert.Empty(t, u.SchoolAddr2)
	assert.Empty(t, u.SchoolAddr3)
	assert.Empty(t, u.SchoolTown)
	assert.Empty(t, u.SchoolPostCode)
}

func TestRefreshDisplayName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	u.RefreshDisplayName()
	assert.Equal(t, "Ada Lovelace", u.DisplayName)
}

func TestSanitizeAndSerialization(t *testing.T) {
	u := &User{Username: "ada", Password: "hash", Salt: "salt", ResetPasswordToken: "tok"}

	raw, err := json.Marshal(u)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "salt")
	assert.NotContains(t, string(raw), "tok")

	u.Sanitize()
	assert.Empty(t, u.Password)
	assert.Empty(t, u.Salt)
}

func TestHasAnyRole(t *testing.T) {
	u := &User{Roles: []string{"moderator"}}
	assert.False(t, u.HasAnyRole("admin"))

	u.Roles = []string{"admin", "moderator"}
	assert.True(t, u.HasAnyRole("admin"))
	assert.True(t, u.HasAnyRole("admin", "moderator"))

	assert.False(t, (&User{}).HasAnyRole("admin"))
}
