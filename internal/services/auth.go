// Package services contains the application services of the newsdesk console.
// This file defines the auth gateway: login, registration, role verification,
// and logout, translating API outcomes into session state transitions.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theeverestnews/newsdesk/internal/api"
	"github.com/theeverestnews/newsdesk/internal/credstore"
	"github.com/theeverestnews/newsdesk/internal/logging"
	"github.com/theeverestnews/newsdesk/internal/session"
)

var (
	// ErrPasswordMismatch is returned by Register before any network call
	// when the password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrNotAdmin is returned by VerifyRole when the server confirmed the
	// token but the account holds a non-admin role.
	ErrNotAdmin = errors.New("account is not an administrator")
)

const adminRole = "admin"

// AuthService defines the authentication operations of the console.
//
// Contract:
//   - Login: authenticate, persist the token, then verify the role.
//   - VerifyRole: authoritative admin check for the current token.
//   - Register: create an account after a local password-equality check.
//   - Resume: hydrate the session token from the credential store.
//   - Logout: reset the session and wipe stored credentials.
//   - CancelPendingRedirect: drop a scheduled non-admin redirect.
//
// No operation retries automatically; every retry is user-initiated.
type AuthService interface {
	Login(ctx context.Context, email, password string, remember bool) error
	VerifyRole(ctx context.Context) error
	Register(ctx context.Context, form api.RegistrationForm, onSuccess func()) error
	Resume(ctx context.Context)
	Logout(ctx context.Context)
	CancelPendingRedirect()
	Close(ctx context.Context) error
}

// Options configures the concrete auth service.
type Options struct {
	// RedirectURL is where non-admin accounts are sent away to.
	RedirectURL string
	// RedirectDelay is the grace period before that redirect fires.
	RedirectDelay time.Duration
	// Redirect is the navigation sink invoked when the delay elapses.
	Redirect func(url string)
	// Notify surfaces the warning shown while the redirect is pending.
	Notify func(msg string)
}

type authService struct {
	api   api.Client
	creds *credstore.Store
	state *session.State
	log   logging.Logger
	opts  Options

	mu            sync.Mutex
	redirectTimer *time.Timer
}

// NewAuthService constructs an AuthService bound to the given API client,
// credential store, and session state. The credential wipe is wired into the
// session's reset hook here so Reset always clears both.
func NewAuthService(client api.Client, creds *credstore.Store, state *session.State, log logging.Logger, opts Options) AuthService {
	a := &authService{api: client, creds: creds, state: state, log: log, opts: opts}
	state.OnReset(func() { creds.Clear(context.Background()) })
	return a
}

// Login posts the credentials, and on success persists the returned token,
// updates the session, and then (sequenced, never concurrent) verifies the
// role. On failure the session is left untouched and the server's error text
// travels up inside the returned error.
func (a *authService) Login(ctx context.Context, email, password string, remember bool) error {
	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.log.Warn(ctx, "login rejected", "error", err)
		return err
	}

	remembered := ""
	if remember {
		remembered = email
	}
	a.creds.Save(ctx, token, remembered)
	a.state.Apply(session.Patch{
		Token:    session.String(token),
		Username: session.String(email),
	})

	a.log.Info(ctx, "login succeeded", "user", email)

	// The role is never trusted from the login response; a second
	// authoritative round-trip establishes it.
	return a.VerifyRole(ctx)
}

// VerifyRole asks the server which role the current token carries.
//
// No token: not an error, merely "not logged in" — no network call, IsAdmin
// stays false. Role "admin": IsAdmin becomes true. Any other role: the token
// is cleared and an external redirect is scheduled after the configured
// delay, giving the user time to read the warning. HTTP failure: IsAdmin
// stays false and the token is kept; the route guard turns that into a
// redirect to the login screen.
func (a *authService) VerifyRole(ctx context.Context) error {
	token := a.state.Current().Token
	if token == "" {
		return nil
	}

	role, err := a.api.UserRole(ctx, token)
	if err != nil {
		a.log.Warn(ctx, "role verification failed", "error", err)
		return err
	}

	if role == adminRole {
		a.state.Apply(session.Patch{IsAdmin: session.Bool(true)})
		return nil
	}

	a.log.Warn(ctx, "non-admin role on admin surface", "role", role)
	a.creds.ClearToken(ctx)
	a.state.Apply(session.Patch{
		Token:   session.String(""),
		IsAdmin: session.Bool(false),
	})
	if a.opts.Notify != nil {
		a.opts.Notify("You are not authorized to access this resource. Redirecting to " + a.opts.RedirectURL + "...")
	}
	a.scheduleRedirect()
	return ErrNotAdmin
}

// Register creates a new account. The password pair is compared locally
// first; a mismatch fails without any network call. The token the server
// returns is deliberately not stored — the user proceeds through a normal
// login afterwards.
func (a *authService) Register(ctx context.Context, form api.RegistrationForm, onSuccess func()) error {
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if _, err := a.api.Register(ctx, form); err != nil {
		a.log.Warn(ctx, "registration rejected", "error", err)
		return err
	}

	a.log.Info(ctx, "registration succeeded", "user", form.Email)
	if onSuccess != nil {
		onSuccess()
	}
	return nil
}

// Resume hydrates the session token from the credential store, so a prior
// login survives a process restart. The role is still unverified at this
// point; the route guard triggers verification before anything renders.
func (a *authService) Resume(ctx context.Context) {
	if token, ok := a.creds.Load(ctx); ok {
		a.state.Apply(session.Patch{Token: session.String(token)})
	}
}

// Logout resets the session (which wipes the credential store via the reset
// hook) and drops any pending redirect.
func (a *authService) Logout(ctx context.Context) {
	a.CancelPendingRedirect()
	a.state.Reset()
	a.log.Info(ctx, "logged out")
}

func (a *authService) scheduleRedirect() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.redirectTimer != nil {
		a.redirectTimer.Stop()
	}
	url := a.opts.RedirectURL
	a.redirectTimer = time.AfterFunc(a.opts.RedirectDelay, func() {
		if a.opts.Redirect != nil {
			a.opts.Redirect(url)
		}
	})
}

// CancelPendingRedirect stops a scheduled redirect, if one is outstanding.
// The route guard calls this when the guarded region is torn down, so a view
// that is already gone never gets redirected.
func (a *authService) CancelPendingRedirect() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.redirectTimer != nil {
		a.redirectTimer.Stop()
		a.redirectTimer = nil
	}
}

// Close releases the API client and the credential database.
func (a *authService) Close(ctx context.Context) error {
	a.CancelPendingRedirect()
	if err := a.api.Close(); err != nil {
		return err
	}
	return a.creds.Close()
}
