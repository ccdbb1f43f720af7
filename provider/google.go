package provider

import (
	"context"
	"errors"

	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

var _ IdentityProvider = (*Google)(nil)

// Google implements IdentityProvider against Google's OIDC endpoints using
// the authorization-code flow with PKCE.
type Google struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// NewGoogle discovers Google's OIDC configuration and prepares the OAuth2
// client. Discovery is a network round trip, so this runs once at startup.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL string) (*Google, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, &NetworkError{Op: "google oidc discovery", Err: err}
	}

	return &Google{
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (g *Google) AuthCodeURL(state, nonce, codeChallenge string) string {
	return g.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (g *Google) Exchange(ctx context.Context, code, codeVerifier, nonce string) (*Profile, error) {
	token, err := g.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The provider answered and rejected the code: not retryable.
			return nil, &session.AuthenticationError{Reason: session.ReasonInvalidCode, Err: err}
		}
		return nil, &NetworkError{Op: "google token exchange", Err: err}
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, &session.AuthenticationError{Reason: session.ReasonIncompleteProfile,
			Err: errors.New("google did not return id_token")}
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &session.AuthenticationError{Reason: session.ReasonInvalidCode, Err: err}
	}
	if idToken.Nonce != nonce {
		return nil, &session.AuthenticationError{Reason: session.ReasonInvalidCode,
			Err: errors.New("id_token nonce mismatch")}
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, &session.AuthenticationError{Reason: session.ReasonIncompleteProfile, Err: err}
	}
	if claims.Subject == "" || claims.Email == "" || claims.Name == "" {
		return nil, &session.AuthenticationError{Reason: session.ReasonIncompleteProfile,
			Err: errors.New("google id_token missing required claims")}
	}

	return &Profile{
		ExternalID:  claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		AvatarURL:   claims.Picture,
		AccessToken: token.AccessToken,
	}, nil
}
