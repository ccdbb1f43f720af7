package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowTime
	nowTime = func() time.Time { return at }
	t.Cleanup(func() { nowTime = prev })
}

func testIdentity() Identity {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Identity{
		ID:         "user-1",
		ExternalID: "g1",
		Email:      "a@b.com",
		Name:       "A",
		AvatarURL:  "https://example.com/a.png",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	s := New(testIdentity(), "token-1", 0)
	require.NotNil(t, s)
	assert.Equal(t, now.Add(3600*time.Second), s.ExpiresAt)
	assert.Equal(t, 3600, RemainingSeconds(s))
}

func TestNew_RemainingMatchesTTL(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	for _, ttl := range []time.Duration{time.Second, 90 * time.Second, 24 * time.Hour} {
		s := New(testIdentity(), "token-1", ttl)
		assert.Equal(t, int(ttl/time.Second), RemainingSeconds(s))
		assert.True(t, IsValid(s))
		assert.False(t, IsExpired(s))
	}
}

func TestNew_NegativeTTLIsExpired(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	s := New(testIdentity(), "token-1", -time.Second)
	assert.False(t, IsValid(s))
	assert.True(t, IsExpired(s))
	assert.Equal(t, 0, RemainingSeconds(s))
}

func TestIsValid_AbsentInputs(t *testing.T) {
	assert.False(t, IsValid(nil))
	assert.True(t, IsExpired(nil))
	assert.Equal(t, 0, RemainingSeconds(nil))

	// Missing expiry is never valid, regardless of identity.
	s := &Session{Identity: testIdentity(), AccessToken: "token-1"}
	assert.False(t, IsValid(s))
	assert.Equal(t, 0, RemainingSeconds(s))
}

func TestIsValid_DoesNotCheckIdentity(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	// A live session with a corrupt identity is still "valid" by the
	// liveness check; only Resolve and RequireValidSession reject it.
	s := New(Identity{}, "token-1", time.Hour)
	assert.True(t, IsValid(s))

	_, err := RequireValidSession(s)
	require.Error(t, err)
}

func TestValidateIdentity(t *testing.T) {
	require.True(t, ValidateIdentity(testIdentity()))

	// Avatar is optional.
	noAvatar := testIdentity()
	noAvatar.AvatarURL = ""
	assert.True(t, ValidateIdentity(noAvatar))

	mutations := map[string]func(*Identity){
		"id":         func(i *Identity) { i.ID = "" },
		"externalId": func(i *Identity) { i.ExternalID = "" },
		"email":      func(i *Identity) { i.Email = "" },
		"name":       func(i *Identity) { i.Name = "" },
		"createdAt":  func(i *Identity) { i.CreatedAt = time.Time{} },
		"updatedAt":  func(i *Identity) { i.UpdatedAt = time.Time{} },
	}
	for field, mutate := range mutations {
		identity := testIdentity()
		mutate(&identity)
		assert.False(t, ValidateIdentity(identity), "missing %s should fail", field)
	}
}

func TestRequireValidSession_Reasons(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	_, err := RequireValidSession(nil)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonNoSession, authErr.Reason)

	_, err = RequireValidSession(New(testIdentity(), "token-1", -time.Second))
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonExpired, authErr.Reason)

	broken := testIdentity()
	broken.Email = ""
	_, err = RequireValidSession(New(broken, "token-1", time.Hour))
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonInvalidIdentity, authErr.Reason)
	assert.True(t, IsAuthenticationError(err))
}

func TestRequireValidSession_ReturnsIdentity(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	identity, err := RequireValidSession(New(testIdentity(), "token-1", time.Hour))
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "g1", identity.ExternalID)
}

func TestTryGetIdentity(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	identity, ok := TryGetIdentity(New(testIdentity(), "token-1", time.Hour))
	require.True(t, ok)
	assert.Equal(t, "a@b.com", identity.Email)

	_, ok = TryGetIdentity(nil)
	assert.False(t, ok)

	_, ok = TryGetIdentity(New(testIdentity(), "token-1", -time.Second))
	assert.False(t, ok)
}

func TestResolve_Outcomes(t *testing.T) {
	fixedClock(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, StatusNoSession, Resolve(nil).Outcome)
	assert.Equal(t, StatusExpired, Resolve(New(testIdentity(), "t", -time.Second)).Outcome)

	broken := testIdentity()
	broken.Name = ""
	assert.Equal(t, StatusInvalidIdentity, Resolve(New(broken, "t", time.Hour)).Outcome)

	res := Resolve(New(testIdentity(), "t", time.Hour))
	assert.Equal(t, StatusOK, res.Outcome)
	require.NotNil(t, res.Identity)
}
