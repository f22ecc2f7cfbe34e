// Package api implements the client for the publishing site's REST API.
// Only the authentication surface is modelled here; the content endpoints
// are reached by the management screens through the same base URL.
package api

import "context"

// RegistrationForm carries the fields posted to the register endpoint.
// The confirm-password equality check happens before this ever reaches
// the wire; the server still receives both fields, as the API demands.
type RegistrationForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Gender          string `json:"gender"`
	AgreedTerms     bool   `json:"agreedTerms"`
}

// UserInfo is the profile returned for an authenticated token.
type UserInfo struct {
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Role     string `json:"role"`
}

// Client is the remote API surface the console depends on.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// Register creates an account and returns the issued token.
	Register(ctx context.Context, form RegistrationForm) (string, error)
	// UserRole returns the role bound to the token ("admin", "editor", ...).
	UserRole(ctx context.Context, token string) (string, error)
	// UserInfo returns the profile bound to the token.
	UserInfo(ctx context.Context, token string) (*UserInfo, error)
	Close() error
}
