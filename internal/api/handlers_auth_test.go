package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-portal/internal/identity"
)

// accountStore is an in-memory identity.Repository for handler tests.
type accountStore struct {
	nextID  int64
	byEmail map[string]*identity.Account
	byID    map[int64]*identity.Account
}

func newAccountStore() *accountStore {
	return &accountStore{
		byEmail: make(map[string]*identity.Account),
		byID:    make(map[int64]*identity.Account),
	}
}

func (s *accountStore) GetAccountByEmail(_ context.Context, email string) (*identity.Account, error) {
	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *accountStore) GetAccountByID(_ context.Context, id int64) (*identity.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *accountStore) CreatePatientAccount(_ context.Context, in identity.NewPatientAccount) (*identity.Account, error) {
	key := strings.ToLower(in.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, identity.ErrDuplicateEmail
	}
	s.nextID++
	a := &identity.Account{
		ID:             s.nextID,
		Email:          in.Email,
		CredentialHash: in.CredentialHash,
		GivenName:      in.GivenName,
		Surname:        in.Surname,
		Role:           identity.RolePatient,
		Enabled:        true,
		CreatedAt:      time.Now(),
	}
	s.byEmail[key] = a
	s.byID[a.ID] = a
	copied := *a
	return &copied, nil
}

func (s *accountStore) UpdateProfile(_ context.Context, id int64, givenName, surname string) error {
	a, ok := s.byID[id]
	if !ok {
		return identity.ErrAccountNotFound
	}
	a.GivenName = givenName
	a.Surname = surname
	return nil
}

func (s *accountStore) UpdateCredential(_ context.Context, id int64, credentialHash string) error {
	a, ok := s.byID[id]
	if !ok {
		return identity.ErrAccountNotFound
	}
	a.CredentialHash = credentialHash
	return nil
}

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens := identity.NewTokenManager("test-secret", time.Hour)
	svc := identity.NewService(newAccountStore(), tokens, bcrypt.MinCost, zerolog.Nop())

	router := NewRouter(RouterConfig{
		Identity: svc,
		Tokens:   tokens,
		Logger:   zerolog.Nop(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSignupAndSignin(t *testing.T) {
	srv := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/signup", SignupRequest{
		Email:           "pat@example.com",
		Password:        "hunter22",
		PasswordConfirm: "hunter22",
		GivenName:       "Pat",
		Surname:         "Smith",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created AccountResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "patient", created.Role)
	assert.Equal(t, "pat@example.com", created.Email)
	assert.Equal(t, "Pat Smith", created.FullName)

	resp = postJSON(t, srv.URL+"/auth/signin", SigninRequest{
		Email:    "pat@example.com",
		Password: "hunter22",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.NotEmpty(t, session.Token)
	assert.Equal(t, created.ID, session.Account.ID)

	// The issued token grants access to the profile surface.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/profile", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	profileResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer profileResp.Body.Close()
	require.Equal(t, http.StatusOK, profileResp.StatusCode)

	var profile AccountResponse
	require.NoError(t, json.NewDecoder(profileResp.Body).Decode(&profile))
	assert.Equal(t, "Pat", profile.GivenName)
	assert.Equal(t, "Pat Smith", profile.FullName)
}

func TestSignupRejections(t *testing.T) {
	srv := newAuthTestServer(t)

	t.Run("password mismatch", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/auth/signup", SignupRequest{
			Email: "a@b.c", Password: "one", PasswordConfirm: "two",
		}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := SignupRequest{
			Email: "dup@example.com", Password: "pw", PasswordConfirm: "pw",
		}
		resp := postJSON(t, srv.URL+"/auth/signup", body, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, srv.URL+"/auth/signup", body, "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/auth/signup", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSigninWrongPassword(t *testing.T) {
	srv := newAuthTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/signup", SignupRequest{
		Email: "pat@example.com", Password: "hunter22", PasswordConfirm: "hunter22",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/auth/signin", SigninRequest{
		Email: "pat@example.com", Password: "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/auth/signin", SigninRequest{
		Email: "nobody@example.com", Password: "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
