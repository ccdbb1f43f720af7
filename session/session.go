package session

import (
	"time"
)

// DefaultTTL is the session lifetime applied when the caller does not
// specify one.
const DefaultTTL = 3600 * time.Second

// nowTime is swapped out in tests to pin the clock.
var nowTime = time.Now

// Identity is the canonical authenticated-user record. It mirrors the
// stored users row, not the raw provider profile: by the time an Identity
// is embedded in a Session it has already been upserted.
type Identity struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session is a time-bounded grant of access for one Identity. The Identity
// is embedded by value so the serialized credential is self-contained;
// sessions are never stored server-side.
type Session struct {
	Identity    Identity  `json:"identity"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// New creates a Session expiring ttl from now. The identity is wrapped as
// given, without validation: an incomplete profile can still be carried and
// surfaces as invalid later, at resolve time.
func New(identity Identity, accessToken string, ttl time.Duration) *Session {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Session{
		Identity:    identity,
		AccessToken: accessToken,
		ExpiresAt:   nowTime().Add(ttl),
	}
}

// IsValid reports whether the session's expiry lies strictly in the future.
// A nil session or a missing expiry is never valid. Identity shape is
// deliberately not checked here; see ValidateIdentity and Resolve.
func IsValid(s *Session) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return nowTime().Before(s.ExpiresAt)
}

// IsExpired is the negation of IsValid.
func IsExpired(s *Session) bool {
	return !IsValid(s)
}

// RemainingSeconds returns the whole seconds left until expiry, floored at
// zero. Absent sessions and absent expiries report zero.
func RemainingSeconds(s *Session) int {
	if s == nil || s.ExpiresAt.IsZero() {
		return 0
	}
	remaining := s.ExpiresAt.Sub(nowTime())
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// ValidateIdentity is the authoritative identity shape check: every field a
// stored user row carries must be present. Creation leaves identities
// unchecked, so this is where a corrupt or truncated profile is caught.
func ValidateIdentity(identity Identity) bool {
	return identity.ID != "" &&
		identity.ExternalID != "" &&
		identity.Email != "" &&
		identity.Name != "" &&
		!identity.CreatedAt.IsZero() &&
		!identity.UpdatedAt.IsZero()
}

// Status discriminates the outcome of resolving a session.
type Status int

const (
	// StatusOK means the session is live and carries a well-formed identity.
	StatusOK Status = iota
	// StatusNoSession means no session was supplied.
	StatusNoSession
	// StatusExpired means the session's expiry is absent or in the past.
	StatusExpired
	// StatusInvalidIdentity means the session is live but its embedded
	// identity fails the shape check.
	StatusInvalidIdentity
)

// Resolution is the discriminated result of Resolve. Identity is non-nil
// only when Outcome is StatusOK.
type Resolution struct {
	Outcome  Status
	Identity *Identity
}

// Resolve classifies a session without using errors for control flow.
// Routine "not authenticated" outcomes are values; only RequireValidSession
// converts them into an error.
func Resolve(s *Session) Resolution {
	if s == nil {
		return Resolution{Outcome: StatusNoSession}
	}
	if !IsValid(s) {
		return Resolution{Outcome: StatusExpired}
	}
	if !ValidateIdentity(s.Identity) {
		return Resolution{Outcome: StatusInvalidIdentity}
	}
	identity := s.Identity
	return Resolution{Outcome: StatusOK, Identity: &identity}
}

// RequireValidSession returns the embedded identity or an
// *AuthenticationError naming why the session is unusable. Intended for
// call sites where a missing session is a caller bug, not a routine state.
func RequireValidSession(s *Session) (*Identity, error) {
	res := Resolve(s)
	switch res.Outcome {
	case StatusNoSession:
		return nil, &AuthenticationError{Reason: ReasonNoSession}
	case StatusExpired:
		return nil, &AuthenticationError{Reason: ReasonExpired}
	case StatusInvalidIdentity:
		return nil, &AuthenticationError{Reason: ReasonInvalidIdentity}
	}
	return res.Identity, nil
}

// TryGetIdentity is the non-failing form of RequireValidSession.
func TryGetIdentity(s *Session) (*Identity, bool) {
	res := Resolve(s)
	if res.Outcome != StatusOK {
		return nil, false
	}
	return res.Identity, true
}
