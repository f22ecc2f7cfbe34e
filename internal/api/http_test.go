package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, loginPath, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body.Email)
		require.Equal(t, "pw", body.Password)

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "T1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	token, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Invalid credentials"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginServerUnreachable(t *testing.T) {
	// Point at a server that was already shut down.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUserRoleSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, rolePath, r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"role": "admin"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	role, err := c.UserRole(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestUserRoleExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("token expired"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.UserRole(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterPostsFullForm(t *testing.T) {
	var got RegistrationForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, registerPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "T2"})
	}))
	defer srv.Close()

	form := RegistrationForm{
		Username:        "reporter",
		Email:           "r@b.com",
		Password:        "pw",
		ConfirmPassword: "pw",
		Gender:          "female",
		AgreedTerms:     true,
	}

	c := NewHTTPClient(srv.URL)
	token, err := c.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
	if diff := cmp.Diff(form, got); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, userInfoPath, r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(UserInfo{Username: "chief", Gender: "male", Role: "admin"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	info, err := c.UserInfo(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, &UserInfo{Username: "chief", Gender: "male", Role: "admin"}, info)
}

func TestAPIErrorMessageFallback(t *testing.T) {
	err := &APIError{StatusCode: 500}
	assert.Equal(t, "request failed with status 500", err.Error())

	err = &APIError{StatusCode: 400, Message: "Bad input"}
	assert.Equal(t, "Bad input", err.Error())
}
