package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theeverestnews/newsdesk/internal/api"
	"github.com/theeverestnews/newsdesk/internal/credstore"
	"github.com/theeverestnews/newsdesk/internal/logging"
	"github.com/theeverestnews/newsdesk/internal/session"

	_ "modernc.org/sqlite"
)

// ---- fake API client ----

type fakeClient struct {
	LoginToken string
	LoginErr   error

	RegisterToken string
	RegisterErr   error

	Role    string
	RoleErr error

	LoginCalls    int
	RegisterCalls int
	RoleCalls     int

	LastLoginEmail    string
	LastLoginPassword string
	LastRoleToken     string
	LastRegisterForm  api.RegistrationForm
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	f.LoginCalls++
	f.LastLoginEmail = email
	f.LastLoginPassword = password
	return f.LoginToken, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, form api.RegistrationForm) (string, error) {
	f.RegisterCalls++
	f.LastRegisterForm = form
	return f.RegisterToken, f.RegisterErr
}

func (f *fakeClient) UserRole(ctx context.Context, token string) (string, error) {
	f.RoleCalls++
	f.LastRoleToken = token
	return f.Role, f.RoleErr
}

func (f *fakeClient) UserInfo(ctx context.Context, token string) (*api.UserInfo, error) {
	return &api.UserInfo{Username: "chief", Role: f.Role}, nil
}

func (f *fakeClient) Close() error { return nil }

// ---- helpers ----

type fixture struct {
	auth      AuthService
	client    *fakeClient
	state     *session.State
	creds     *credstore.Store
	redirects *atomic.Int32
	lastURL   atomic.Value
}

func setup(t *testing.T, client *fakeClient) *fixture {
	t.Helper()

	ctx := context.Background()
	creds, err := credstore.Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared", logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = creds.Close() })

	f := &fixture{client: client, state: session.NewState(), creds: creds, redirects: &atomic.Int32{}}
	f.auth = NewAuthService(client, creds, f.state, logging.NewDiscardLogger(), Options{
		RedirectURL:   "https://example.com",
		RedirectDelay: 20 * time.Millisecond,
		Redirect: func(url string) {
			f.redirects.Add(1)
			f.lastURL.Store(url)
		},
	})
	return f
}

// ---- tests ----

func TestVerifyRoleWithoutTokenIssuesNoNetworkCall(t *testing.T) {
	f := setup(t, &fakeClient{})

	err := f.auth.VerifyRole(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, f.client.RoleCalls)
	assert.False(t, f.state.Current().Identity.IsAdmin)
}

func TestLoginPersistsTokenAndVerifiesRole(t *testing.T) {
	f := setup(t, &fakeClient{LoginToken: "T1", Role: "admin"})
	ctx := context.Background()

	require.NoError(t, f.auth.Login(ctx, "a@b.com", "pw", false))

	cur := f.state.Current()
	assert.Equal(t, "T1", cur.Token)
	assert.Equal(t, "a@b.com", cur.Identity.Username)
	assert.True(t, cur.Identity.IsAdmin)

	stored, ok := f.creds.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "T1", stored)

	// The role check ran with the freshly issued token.
	assert.Equal(t, 1, f.client.RoleCalls)
	assert.Equal(t, "T1", f.client.LastRoleToken)
}

func TestLoginRemembersEmailWhenAsked(t *testing.T) {
	f := setup(t, &fakeClient{LoginToken: "T1", Role: "admin"})
	ctx := context.Background()

	require.NoError(t, f.auth.Login(ctx, "a@b.com", "pw", true))

	email, ok := f.creds.RememberedEmail(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", email)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	f := setup(t, &fakeClient{LoginErr: &api.APIError{StatusCode: 401, Message: "Invalid credentials"}})
	ctx := context.Background()

	err := f.auth.Login(ctx, "a@b.com", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	assert.Equal(t, session.Session{}, f.state.Current())
	_, ok := f.creds.Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, f.client.RoleCalls)

	// Exactly one attempt; nothing retried on its own.
	assert.Equal(t, 1, f.client.LoginCalls)
}

func TestVerifyRoleNonAdminClearsTokenAndRedirectsOnce(t *testing.T) {
	f := setup(t, &fakeClient{LoginToken: "T1", Role: "editor"})
	ctx := context.Background()

	err := f.auth.Login(ctx, "a@b.com", "pw", false)
	require.ErrorIs(t, err, ErrNotAdmin)

	cur := f.state.Current()
	assert.Empty(t, cur.Token)
	assert.False(t, cur.Identity.IsAdmin)

	_, ok := f.creds.Load(ctx)
	assert.False(t, ok)

	// The redirect fires after the configured delay, exactly once.
	assert.EqualValues(t, 0, f.redirects.Load())
	assert.Eventually(t, func() bool { return f.redirects.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, f.redirects.Load())
	assert.Equal(t, "https://example.com", f.lastURL.Load())
}

func TestCancelPendingRedirect(t *testing.T) {
	f := setup(t, &fakeClient{LoginToken: "T1", Role: "editor"})
	ctx := context.Background()

	_ = f.auth.Login(ctx, "a@b.com", "pw", false)
	f.auth.CancelPendingRedirect()

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 0, f.redirects.Load())
}

func TestVerifyRoleHTTPFailureKeepsToken(t *testing.T) {
	f := setup(t, &fakeClient{RoleErr: &api.APIError{StatusCode: 403, Message: "token expired"}})
	ctx := context.Background()

	f.state.Apply(session.Patch{Token: session.String("stale")})
	f.creds.Save(ctx, "stale", "")

	err := f.auth.VerifyRole(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	cur := f.state.Current()
	assert.False(t, cur.Identity.IsAdmin)
	// The stale token stays; only a later login overwrites it.
	assert.Equal(t, "stale", cur.Token)
	stored, ok := f.creds.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "stale", stored)

	assert.EqualValues(t, 0, f.redirects.Load())
}

func TestRegisterPasswordMismatchSkipsNetwork(t *testing.T) {
	f := setup(t, &fakeClient{})

	form := api.RegistrationForm{Password: "abc", ConfirmPassword: "xyz"}
	err := f.auth.Register(context.Background(), form, nil)
	require.ErrorIs(t, err, ErrPasswordMismatch)

	assert.Equal(t, 0, f.client.RegisterCalls)
}

func TestRegisterSuccessInvokesCallback(t *testing.T) {
	f := setup(t, &fakeClient{RegisterToken: "T2"})

	form := api.RegistrationForm{
		Username:        "reporter",
		Email:           "r@b.com",
		Password:        "pw",
		ConfirmPassword: "pw",
		Gender:          "female",
		AgreedTerms:     true,
	}

	done := false
	require.NoError(t, f.auth.Register(context.Background(), form, func() { done = true }))
	assert.True(t, done)
	assert.Equal(t, form, f.client.LastRegisterForm)

	// Registration never logs the user in.
	assert.Equal(t, session.Session{}, f.state.Current())
}

func TestResumeHydratesTokenFromStore(t *testing.T) {
	f := setup(t, &fakeClient{})
	ctx := context.Background()

	f.creds.Save(ctx, "T1", "a@b.com")
	f.auth.Resume(ctx)

	cur := f.state.Current()
	assert.Equal(t, "T1", cur.Token)
	// Resumed tokens are unverified until the guard runs.
	assert.False(t, cur.Identity.IsAdmin)
}

func TestLogoutResetsSessionAndStore(t *testing.T) {
	f := setup(t, &fakeClient{LoginToken: "T1", Role: "admin"})
	ctx := context.Background()

	require.NoError(t, f.auth.Login(ctx, "a@b.com", "pw", false))
	f.auth.Logout(ctx)

	assert.Equal(t, session.Session{}, f.state.Current())
	_, ok := f.creds.Load(ctx)
	assert.False(t, ok)
}

func TestVerifyRoleTransportFailure(t *testing.T) {
	f := setup(t, &fakeClient{RoleErr: errors.New("connection refused")})
	ctx := context.Background()

	f.state.Apply(session.Patch{Token: session.String("T1")})

	err := f.auth.VerifyRole(ctx)
	require.Error(t, err)
	assert.False(t, f.state.Current().Identity.IsAdmin)
}
