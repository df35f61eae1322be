package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeStore struct {
	users map[string]*User // keyed by id

	lookups   int
	createErr error
	saveErr   error
	setErr    error
}

func newFakeStore(users ...*User) *fakeStore {
	s := &fakeStore{users: map[string]*User{}}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeStore) get(match func(*User) bool) (*User, error) {
	s.lookups++
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) ByEmail(_ context.Context, email string) (*User, error) {
	return s.get(func(u *User) bool { return u.Email == email })
}

func (s *fakeStore) ByUsername(_ context.Context, username string) (*User, error) {
	return s.get(func(u *User) bool { return u.Username == username })
}

func (s *fakeStore) ByID(_ context.Context, id string) (*User, error) {
	return s.get(func(u *User) bool { return u.ID == id })
}

func (s *fakeStore) Create(_ context.Context, u *User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, have := range s.users {
		if have.Email == u.Email || have.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = "id-" + u.Email
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{"user"}
	}
	if u.Password != "" {
		u.Password = "hashed:" + u.Password
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) Save(_ context.Context, u *User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	have, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *u
	cp.Password = have.Password
	cp.Salt = have.Salt
	cp.Roles = have.Roles
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) SetPassword(_ context.Context, u *User, plaintext string) error {
	if s.setErr != nil {
		return s.setErr
	}
	have, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	have.Password = "hashed:" + plaintext
	return nil
}

func (s *fakeStore) Authenticate(u *User, password string) bool {
	if u == nil {
		return false
	}
	have, ok := s.users[u.ID]
	if !ok {
		return false
	}
	return have.Password == "hashed:"+password
}

type fakeSessions struct {
	store *fakeStore

	loggedIn *User
	current  *User
	loginErr error
}

func (f *fakeSessions) Authenticate(ctx context.Context, login, password string) (*User, error) {
	u, err := f.store.ByEmail(ctx, login)
	if errors.Is(err, ErrNotFound) {
		u, err = f.store.ByUsername(ctx, login)
	}
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	if !f.store.Authenticate(u, password) {
		return nil, ErrAuthenticationFailed
	}
	return u, nil
}

func (f *fakeSessions) Login(_ echo.Context, u *User) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = u
	f.current = u
	return nil
}

func (f *fakeSessions) Logout(_ echo.Context)               { f.current = nil }
func (f *fakeSessions) CurrentUser(_ echo.Context) *User    { return f.current }
func (f *fakeSessions) IsAuthenticated(_ echo.Context) bool { return f.current != nil }

type fakeMailer struct {
	oneTimeTo    string
	oneTimeToken string
	sendErr      error

	welcomes int
}

func (m *fakeMailer) SendOneTimePassword(_ context.Context, to, token string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.oneTimeTo = to
	m.oneTimeToken = token
	return nil
}

func (m *fakeMailer) EnqueueWelcome(_, _, _ string) error {
	m.welcomes++
	return nil
}

// --- helpers ---

type env struct {
	handler  *Handler
	store    *fakeStore
	sessions *fakeSessions
	mailer   *fakeMailer
}

func newEnv(users ...*User) *env {
	st := newFakeStore(users...)
	se := &fakeSessions{store: st}
	ma := &fakeMailer{}
	return &env{
		handler:  NewHandler(st, se, ma, zap.NewNop()),
		store:    st,
		sessions: se,
		mailer:   ma,
	}
}

func request(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *strings.Reader
	switch b := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
