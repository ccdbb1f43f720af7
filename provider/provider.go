// Package provider exchanges OAuth authorization codes for verified user
// profiles. Implementations return identity facts only: no user creation,
// no session management.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Profile is the normalized result of a successful exchange. AccessToken
// is the provider-issued opaque credential later embedded in the session.
type Profile struct {
	ExternalID  string
	Email       string
	Name        string
	AvatarURL   string
	AccessToken string
}

// IdentityProvider is the contract the login handlers depend on. The
// concrete Google implementation is injected at wiring time so tests can
// substitute a fake without touching shared state.
type IdentityProvider interface {
	// AuthCodeURL builds the provider authorization URL carrying the
	// state, OIDC nonce, and PKCE code challenge.
	AuthCodeURL(state, nonce, codeChallenge string) string

	// Exchange swaps an authorization code for a verified Profile.
	// Provider-side rejections surface as *session.AuthenticationError;
	// transport failures surface as *NetworkError.
	Exchange(ctx context.Context, code, codeVerifier, nonce string) (*Profile, error)
}

// NetworkError is a transient transport failure talking to the provider.
// It is retryable; provider-side rejections are not.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Retryable marks the error for generic retry helpers.
func (e *NetworkError) Retryable() bool {
	return true
}

// IsRetryable reports whether err is (or wraps) a retryable failure.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.Retryable()
}
