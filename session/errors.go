package session

import "errors"

// Reasons carried by AuthenticationError. Consumers match on these rather
// than parsing error strings.
const (
	ReasonNoSession         = "no session provided"
	ReasonExpired           = "session has expired"
	ReasonInvalidIdentity   = "invalid user data in session"
	ReasonIncompleteProfile = "incomplete provider profile"
	ReasonProviderDenied    = "authorization denied by user"
	ReasonInvalidCode       = "invalid authorization code"
	ReasonUpsertFailed      = "failed to persist user"
)

// AuthenticationError signals that a caller could not be authenticated.
// It is reserved for require-style calls and provider exchanges; functions
// that merely inspect session data degrade to absent/false instead.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return "authentication failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err is (or wraps) an
// AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
