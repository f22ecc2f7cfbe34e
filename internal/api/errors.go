package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks transport-level failures: the server could not be
	// reached or the response never arrived.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized marks 401/403 responses: the token is missing, invalid
	// or expired, or the account lacks the required privilege.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError carries a non-2xx response. Message is the server's plain-text
// error body, which the forms surface to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is lets 401/403 APIErrors match ErrUnauthorized via errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.StatusCode == 401 || e.StatusCode == 403)
}
