// Package explorererrors contains the error types returned by the auth and
// query layers. Handlers inspect these types to decide whether a failure is
// recoverable (bad credentials, expired session) or should be rendered as a
// retryable query error.
package explorererrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingCredentials is returned when a sign-in attempt omits the email
// or password, or when a request reaches a protected path without a session.
type ErrMissingCredentials struct {
	Message string
}

func (err *ErrMissingCredentials) Error() string {
	if err.Message == "" {
		return "credentials are missing"
	}
	return fmt.Sprintf("credentials are missing; %s", err.Message)
}

// ErrInvalidCredentials is returned when the identity provider rejects a
// sign-in attempt, or when the backend rejects a bearer token.
type ErrInvalidCredentials struct {
	Email   string // email that attempted to sign in, if known
	Message string // provider-supplied message, surfaced to the user
}

func (err *ErrInvalidCredentials) Error() (s string) {
	if err.Email != "" {
		s = fmt.Sprintf("invalid credentials for %q", err.Email)
	} else {
		s = "invalid credentials"
	}
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrQueryFailed wraps any backend failure during a data query. The query
// layers make a single attempt; there is no retry, so the cause reaches the
// caller unchanged.
type ErrQueryFailed struct {
	Table   string // table being queried, e.g. "English"
	Backend string // backend kind, e.g. "postgrest" or "postgres"
	Cause   error
}

func (err *ErrQueryFailed) Error() string {
	return fmt.Sprintf("query against table %q failed (%s backend): %v", err.Table, err.Backend, err.Cause)
}

func (err *ErrQueryFailed) Unwrap() error { return err.Cause }

// IsAuthError reports whether err (or anything it wraps) indicates missing
// or rejected credentials.
func IsAuthError(err error) bool {
	var missing *ErrMissingCredentials
	var invalid *ErrInvalidCredentials
	return errors.As(err, &missing) || errors.As(err, &invalid)
}
