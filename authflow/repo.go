// Package authflow stores short-lived OAuth login flow state: the PKCE
// verifier, nonce, and return URL created at /auth/login and consumed once
// at the callback. This is flow state only; authenticated sessions are
// carried entirely in the client's cookie and are never stored here.
package authflow

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// TTL is how long a login attempt may take before its state expires.
const TTL = 10 * time.Minute

// ErrNotFound is returned for unknown or expired state parameters.
var ErrNotFound = errors.New("auth flow state not found")

// State is the per-login-attempt record keyed by the OAuth state parameter.
type State struct {
	CodeVerifier string    `json:"code_verifier"`
	Nonce        string    `json:"nonce"`
	ReturnURL    string    `json:"return_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repo stores flow state for the duration of one login attempt.
type Repo interface {
	// Put stores state under the given state parameter for TTL.
	Put(ctx context.Context, stateParam string, state *State) error

	// Take retrieves and deletes the state in one step, so a state
	// parameter can never be replayed. Unknown or expired parameters
	// return ErrNotFound.
	Take(ctx context.Context, stateParam string) (*State, error)
}
