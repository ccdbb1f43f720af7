package server_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cdynak/qr-scanner-registry/server"
	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardRequest(t *testing.T, f *fixture, opts server.PageGuardOptions, decision session.Decision) *httptest.ResponseRecorder {
	t.Helper()

	handler := f.server.RequirePage(opts)(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("protected content"))
	})

	req := httptest.NewRequest(http.MethodGet, "/secret?tab=2", nil)
	req = req.WithContext(session.WithDecision(req.Context(), decision))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRequirePage_AuthenticatedPassesThrough(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	rec := guardRequest(t, f, server.PageGuardOptions{RedirectTo: "/auth/login"}, session.Decision{
		Authenticated: true,
		Identity:      &session.Identity{ID: "u1", ExternalID: "g1", Email: "a@b.com", Name: "A"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "protected content", rec.Body.String())
}

func TestRequirePage_RedirectWinsOverFallback(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	rec := guardRequest(t, f, server.PageGuardOptions{
		RedirectTo: "/auth/login",
		Fallback: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("fallback"))
		},
	}, session.Decision{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "fallback")
}

func TestRequirePage_FallbackRendersInPlace(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	rec := guardRequest(t, f, server.PageGuardOptions{
		Fallback: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("public teaser"))
		},
	}, session.Decision{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public teaser", rec.Body.String())
}

func TestRequirePage_BuiltInPrompt(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	rec := guardRequest(t, f, server.PageGuardOptions{}, session.Decision{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please log in")
	assert.Contains(t, rec.Body.String(), "/auth/login")
}

func TestRequirePage_EvaluationErrorRendersRetry(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	rec := guardRequest(t, f, server.PageGuardOptions{RedirectTo: "/auth/login"}, session.Decision{
		Err: errors.New("session evaluation panicked"),
	})

	// An evaluation failure is not a routine "not signed in": no redirect,
	// a distinguishable error page, and a retry link to the same URL.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Authentication Error")
	assert.Contains(t, rec.Body.String(), "/secret?tab=2")
}

func TestIndexRoute_RedirectsAnonymousToLogin(t *testing.T) {
	f := newFixture(t, defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestIndexRoute_RendersForSignedInUser(t *testing.T) {
	f := newFixture(t, defaultTestConfig())
	user, cookie := f.loggedInUser(t, "g-index")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as "+user.Name)
}
