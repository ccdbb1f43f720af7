package server

import (
	"html/template"
	"net/http"

	"github.com/cdynak/qr-scanner-registry/session"
)

// PageGuardOptions configures RequirePage for one route.
type PageGuardOptions struct {
	// RedirectTo, when set, sends unauthenticated visitors to this
	// location instead of rendering anything.
	RedirectTo string

	// Fallback, when set and no redirect is configured, renders in place
	// of the protected content for unauthenticated visitors.
	Fallback http.HandlerFunc
}

var loginPromptTemplate = template.Must(template.New("login-prompt").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in required</title></head>
<body>
  <h1>Please log in</h1>
  <p>You need to sign in with Google to use the scanner.</p>
  <p><a href="/auth/login">Sign in</a></p>
</body>
</html>`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>QR Scanner Registry</title></head>
<body>
  <h1>QR Scanner Registry</h1>
  <p>Signed in as {{.Name}}. <a href="/auth/logout">Sign out</a></p>
  <div id="scanner"></div>
</body>
</html>`))

var authErrorTemplate = template.Must(template.New("auth-error").Parse(`<!DOCTYPE html>
<html>
<head><title>Authentication Error</title></head>
<body>
  <h1>Authentication Error</h1>
  <p>Something went wrong while checking your session.</p>
  <p><a href="{{.RetryURL}}">Retry</a></p>
</body>
</html>`))

// RequirePage guards a browser route with the request's Decision.
// Precedence for unauthenticated visitors: configured redirect, then
// caller-supplied fallback, then the built-in login prompt. A decision
// whose evaluation itself failed renders a distinguishable error page with
// a retry action instead of the routine prompt.
func (s *Server) RequirePage(opts PageGuardOptions) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision, _ := session.DecisionFromContext(r.Context())

			if decision.Err != nil {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = authErrorTemplate.Execute(w, struct{ RetryURL string }{RetryURL: r.URL.RequestURI()})
				return
			}

			if decision.Authenticated {
				next(w, r)
				return
			}

			if opts.RedirectTo != "" {
				http.Redirect(w, r, opts.RedirectTo, http.StatusSeeOther)
				return
			}
			if opts.Fallback != nil {
				opts.Fallback(w, r)
				return
			}

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = loginPromptTemplate.Execute(w, nil)
		}
	}
}
