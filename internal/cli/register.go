package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/theeverestnews/newsdesk/internal/api"
	"github.com/theeverestnews/newsdesk/internal/services"
)

// Register runs the account creation form. The password pair is checked for
// equality before anything goes over the wire; a mismatch is reported and
// the form is abandoned without a network call. On success all fields are
// discarded and the user lands back at the login prompt.
func (a *App) Register(ctx context.Context) error {
	if a.registerInFlight {
		fmt.Fprintln(a.out, "A registration request is already in progress.")
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer wipeBytes(confirm)

	gender, err := GetChoice(a.reader, "Select gender", []string{"male", "female"}, a.out)
	if err != nil {
		return err
	}

	agreed, err := GetYesNo(a.reader, "I agree to the terms and conditions", a.out)
	if err != nil {
		return err
	}

	form := api.RegistrationForm{
		Username:        username,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		Gender:          gender,
		AgreedTerms:     agreed,
	}

	a.registerInFlight = true
	defer func() { a.registerInFlight = false }()

	err = a.auth.Register(ctx, form, func() {
		fmt.Fprintln(a.out, "Account created. Please log in.")
	})
	if err != nil {
		if errors.Is(err, services.ErrPasswordMismatch) {
			fmt.Fprintln(a.out, "Passwords do not match")
			return nil
		}
		fmt.Fprintln(a.out, "Registration failed: "+err.Error())
		return nil
	}
	return nil
}
