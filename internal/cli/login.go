package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/theeverestnews/newsdesk/internal/guard"
	"github.com/theeverestnews/newsdesk/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Login runs the login form: email (prefilled from the last attempt or the
// remembered identifier), secret with an optional display-only visibility
// toggle, and a remember flag that persists the email only. The submit is
// delayed by the configured short interval and locked against resubmission
// while the request is in flight. On success the guard takes over; on
// failure the server's error text is shown and nothing entered is lost.
//
// A returned error means input could not be read at all (EOF); form and
// server rejections are reported to the user and return nil.
func (a *App) Login(ctx context.Context) error {
	if a.loginInFlight {
		fmt.Fprintln(a.out, "A login request is already in progress.")
		return nil
	}

	email, err := GetTextWithDefault(a.reader, "Enter email", a.prefillEmail(ctx), a.out)
	if err != nil {
		return err
	}

	show, err := GetYesNo(a.reader, "Show password while typing?", a.out)
	if err != nil {
		return err
	}

	// The toggle changes the display only, never the submitted value.
	var password []byte
	if show {
		password, err = GetVisiblePassword(a.reader, "Enter password", a.out)
	} else {
		password, err = getPassword("Enter password", a.out)
	}
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	remember, err := GetYesNo(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	a.loginInFlight = true
	defer func() { a.loginInFlight = false }()

	fmt.Fprintln(a.out, "Signing in...")
	sleep(a.config.SubmitDelay)

	a.lastEmail = email
	err = a.auth.Login(ctx, email, string(password), remember)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Login successful.")
	case errors.Is(err, services.ErrNotAdmin):
		// The warning and scheduled redirect were already surfaced by the
		// gateway; the guard below turns this into a denial.
	default:
		fmt.Fprintln(a.out, "Login failed: "+err.Error())
		return nil
	}

	// Navigate to the application root; the route guard decides admission.
	if a.guard.Mount(ctx) == guard.StatusAdmitted {
		a.Shell(ctx)
		a.guard.Unmount()
	}
	return nil
}

// prefillEmail returns the identifier to suggest in the email field: the one
// from the last (possibly failed) attempt, else the remembered one.
func (a *App) prefillEmail(ctx context.Context) string {
	if a.lastEmail != "" {
		return a.lastEmail
	}
	if email, ok := a.rememberedEmail(ctx); ok {
		return email
	}
	return ""
}
