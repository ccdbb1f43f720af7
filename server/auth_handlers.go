package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/cdynak/qr-scanner-registry/authflow"
	"github.com/cdynak/qr-scanner-registry/provider"
	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/cdynak/qr-scanner-registry/users"
)

const (
	stateLength    = 32
	verifierLength = 32
	nonceLength    = 32
)

// LoginHandler starts the Google login: it stores per-attempt flow state
// (PKCE verifier, nonce, return URL) and redirects to the authorization
// endpoint.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(stateLength)
		verifier := generateRandomString(verifierLength)
		nonce := generateRandomString(nonceLength)

		err := s.flow.Put(r.Context(), state, &authflow.State{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    safeReturnPath(r.URL.Query().Get("return")),
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to store auth flow state")
			writeError(w, http.StatusInternalServerError, "login unavailable")
			return
		}

		http.Redirect(w, r, s.provider.AuthCodeURL(state, nonce, generateCodeChallenge(verifier)), http.StatusFound)
	}
}

// CallbackHandler completes the login. The canonical stored user, not
// Google's transient profile, is what gets embedded into the session, so
// the upsert must finish before the session is created.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue covers both GET query params and form_post bodies.
		if errParam := r.FormValue("error"); errParam != "" {
			// The user declined at the consent screen; routine, not logged
			// as an error.
			s.logger.Info().Str("error", errParam).Msg("authorization denied at provider")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}

		code := r.FormValue("code")
		state := r.FormValue("state")
		if code == "" || state == "" {
			writeError(w, http.StatusBadRequest, "missing code or state parameter")
			return
		}

		flowState, err := s.flow.Take(r.Context(), state)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid state parameter")
			return
		}

		profile, err := s.provider.Exchange(r.Context(), code, flowState.CodeVerifier, flowState.Nonce)
		if err != nil {
			s.logger.Error().Err(err).Msg("token exchange failed")
			if provider.IsRetryable(err) {
				writeError(w, http.StatusServiceUnavailable, "identity provider unavailable")
				return
			}
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}

		user, err := s.users.SyncProfile(r.Context(), users.Profile{
			ExternalID: profile.ExternalID,
			Email:      profile.Email,
			Name:       profile.Name,
			AvatarURL:  profile.AvatarURL,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("user upsert failed")
			writeError(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		ttl := time.Duration(s.config.GetSessionTTLSeconds()) * time.Second
		sess := session.New(user.Identity(), profile.AccessToken, ttl)
		w.Header().Add("Set-Cookie", session.Serialize(sess, s.config.IsProduction()))

		returnURL := flowState.ReturnURL
		if returnURL == "" {
			returnURL = s.config.GetPostLoginRedirect()
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session. The clear credential is attached before
// anything else happens: even if computing the redirect target fails, the
// client still loses its cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", session.ClearCredential())

		target, err := s.logoutTarget()
		if err != nil {
			s.logger.Warn().Err(err).Msg("invalid post-logout redirect, falling back to /")
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (s *Server) logoutTarget() (string, error) {
	target := s.config.GetPostLogoutRedirect()
	if target == "" {
		return "/", nil
	}
	if _, err := url.Parse(target); err != nil {
		return "", err
	}
	return target, nil
}

// MeHandler returns the authenticated identity. Runs behind RequireAuth.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision, _ := session.DecisionFromContext(r.Context())
		identity, err := session.RequireValidSession(decision.Session)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, identity)
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// IndexHandler serves the scanner page shell. The camera capture and
// decoding run client-side; this route only confirms the visitor is
// signed in and hands over the page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision, _ := session.DecisionFromContext(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, struct{ Name string }{Name: decision.Identity.Name})
	}
}
