package account

import "time"

// User is the persistent account record. Password, Salt and the one-time
// reset state never serialize to clients.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Title       string `json:"title"`
	Affiliated  string `json:"affiliated"`

	SchoolURN      string `json:"schoolUrn"`
	SchoolName     string `json:"schoolName"`
	SchoolAddr1    string `json:"schoolAddr1"`
	SchoolAddr2    string `json:"schoolAddr2"`
	SchoolAddr3    string `json:"schoolAddr3"`
	SchoolTown     string `json:"schoolTown"`
	SchoolPostCode string `json:"schoolPostCode"`

	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`

	Password string `json:"-"`
	Salt     string `json:"-"`

	ResetPasswordToken   string    `json:"-"`
	ResetPasswordExpires time.Time `json:"-"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// School is the structured school record supplied on signup and update.
type School struct {
	URN      string `json:"urn"`
	Name     string `json:"name"`
	Addr1    string `json:"addr1"`
	Addr2    string `json:"addr2"`
	Addr3    string `json:"addr3"`
	Town     string `json:"town"`
	PostCode string `json:"postCode"`
}

// ApplySchool overwrites all seven school fields from s, or clears all of
// them when s is nil. Partial school state never persists.
func (u *User) ApplySchool(s *School) {
	if s == nil {
		u.SchoolURN = ""
		u.SchoolName = ""
		u.SchoolAddr1 = ""
		u.SchoolAddr2 = ""
		u.SchoolAddr3 = ""
		u.SchoolTown = ""
		u.SchoolPostCode = ""
		return
	}
	u.SchoolURN = s.URN
	u.SchoolName = s.Name
	u.SchoolAddr1 = s.Addr1
	u.SchoolAddr2 = s.Addr2
	u.SchoolAddr3 = s.Addr3
	u.SchoolTown = s.Town
	u.SchoolPostCode = s.PostCode
}

// RefreshDisplayName recomputes displayName from the name parts. Call after
// any change to FirstName or LastName.
func (u *User) RefreshDisplayName() {
	u.DisplayName = u.FirstName + " " + u.LastName
}

// Sanitize clears credential material on the in-memory record before it is
// exposed. The stored row is untouched; save happens before Sanitize.
func (u *User) Sanitize() {
	u.Password = ""
	u.Salt = ""
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
