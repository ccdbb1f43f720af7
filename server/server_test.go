package server_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cdynak/qr-scanner-registry/authflow"
	"github.com/cdynak/qr-scanner-registry/provider"
	scanfake "github.com/cdynak/qr-scanner-registry/scans/repofake"
	"github.com/cdynak/qr-scanner-registry/server"
	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/cdynak/qr-scanner-registry/users"
	userfake "github.com/cdynak/qr-scanner-registry/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testConfig is a static config.Config for tests.
type testConfig struct {
	env        string
	production bool
	ttlSeconds int
	postLogin  string
	postLogout string
}

func (c testConfig) GetPort() string               { return ":0" }
func (c testConfig) GetAppName() string            { return "test" }
func (c testConfig) GetEnv() string                { return c.env }
func (c testConfig) IsProduction() bool            { return c.production }
func (c testConfig) GetGoogleClientID() string     { return "client-id" }
func (c testConfig) GetGoogleClientSecret() string { return "client-secret" }
func (c testConfig) GetGoogleRedirectURL() string  { return "http://localhost/auth/callback" }
func (c testConfig) GetDatabaseDSN() string        { return "" }
func (c testConfig) GetRedisAddr() string          { return "" }
func (c testConfig) GetSessionTTLSeconds() int     { return c.ttlSeconds }
func (c testConfig) GetPostLoginRedirect() string  { return c.postLogin }
func (c testConfig) GetPostLogoutRedirect() string { return c.postLogout }

func defaultTestConfig() testConfig {
	return testConfig{
		env:        "TEST",
		ttlSeconds: 3600,
		postLogin:  "/",
		postLogout: "/",
	}
}

// fakeProvider is an injectable IdentityProvider that never touches the
// network.
type fakeProvider struct {
	profile       *provider.Profile
	exchangeErr   error
	exchangeCalls int
	lastVerifier  string
	lastNonce     string
}

func (p *fakeProvider) AuthCodeURL(state, nonce, codeChallenge string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code, codeVerifier, nonce string) (*provider.Profile, error) {
	p.exchangeCalls++
	p.lastVerifier = codeVerifier
	p.lastNonce = nonce
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.profile, nil
}

type fixture struct {
	server   *server.Server
	users    *userfake.FakeUserRepo
	scans    *scanfake.FakeScanRepo
	flow     *authflow.InMemoryRepo
	provider *fakeProvider
	logBuf   *bytes.Buffer
}

func newFixture(t *testing.T, cfg testConfig) *fixture {
	t.Helper()

	f := &fixture{
		users:  userfake.NewFakeUserRepo(),
		scans:  scanfake.NewFakeScanRepo(),
		flow:   authflow.NewInMemoryRepo(),
		logBuf: &bytes.Buffer{},
		provider: &fakeProvider{profile: &provider.Profile{
			ExternalID:  "g1",
			Email:       "a@b.com",
			Name:        "A",
			AccessToken: "provider-token",
		}},
	}

	srv, err := server.New(cfg, server.Deps{
		Users:    users.NewService(f.users),
		Scans:    f.scans,
		Provider: f.provider,
		Flow:     f.flow,
		Logger:   zerolog.New(f.logBuf),
	})
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *fixture) logLines() int {
	trimmed := strings.TrimSpace(f.logBuf.String())
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, "\n"))
}

// loggedInUser seeds a stored user and returns a valid session cookie
// header carrying its identity.
func (f *fixture) loggedInUser(t *testing.T, externalID string) (*users.User, string) {
	t.Helper()

	svc := users.NewService(f.users)
	user, err := svc.SyncProfile(context.Background(), users.Profile{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		Name:       "User " + externalID,
	})
	require.NoError(t, err)

	sess := session.New(user.Identity(), "token-"+externalID, time.Hour)
	credential := session.Serialize(sess, false)
	payload, ok := session.CredentialFromCookieHeader(credential)
	require.True(t, ok)
	return user, session.CookieName + "=" + payload
}
