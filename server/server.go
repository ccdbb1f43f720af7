package server

import (
	"net/http"
	"strings"

	"github.com/cdynak/qr-scanner-registry/authflow"
	"github.com/cdynak/qr-scanner-registry/internal/config"
	"github.com/cdynak/qr-scanner-registry/provider"
	"github.com/cdynak/qr-scanner-registry/scans"
	"github.com/cdynak/qr-scanner-registry/session"
	"github.com/cdynak/qr-scanner-registry/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Deps holds the collaborators a Server needs. Everything is injected so
// tests can run against fakes without patching shared state.
type Deps struct {
	Users    *users.Service
	Scans    scans.Repo
	Provider provider.IdentityProvider
	Flow     authflow.Repo
	Logger   zerolog.Logger
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	users    *users.Service
	scans    scans.Repo
	provider provider.IdentityProvider
	flow     authflow.Repo
	gate     *session.Gate
	logger   zerolog.Logger
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Users == nil {
		return nil, errors.New("[Server New] users service is required")
	}
	if deps.Scans == nil {
		return nil, errors.New("[Server New] scans repo is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("[Server New] identity provider is required")
	}
	if deps.Flow == nil {
		return nil, errors.New("[Server New] auth flow repo is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		users:    deps.Users,
		scans:    deps.Scans,
		provider: deps.Provider,
		flow:     deps.Flow,
		gate:     session.NewGate(deps.Logger),
		logger:   deps.Logger,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /healthz", s.HealthHandler())

	// LOGIN / LOGOUT
	s.RegisterRouteFunc("GET /auth/login", ChainMiddleware(s.LoginHandler(), s.WebMiddleware()...))
	s.RegisterRouteFunc("GET /auth/callback", ChainMiddleware(s.CallbackHandler(), s.WebMiddleware()...))
	s.RegisterRouteFunc("POST /auth/callback", ChainMiddleware(s.CallbackHandler(), s.WebMiddleware()...)) // form_post response mode
	s.RegisterRouteFunc("GET /auth/logout", ChainMiddleware(s.LogoutHandler(), s.WebMiddleware()...))

	// API routes; the gate annotates, RequireAuth enforces.
	s.RegisterRouteFunc("GET /api/me", ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("POST /api/scans", ChainMiddleware(s.CreateScanHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET /api/scans", ChainMiddleware(s.ListScansHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET /api/scans/{id}", ChainMiddleware(s.GetScanHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("DELETE /api/scans/{id}", ChainMiddleware(s.DeleteScanHandler(), s.APIMiddleware(s.RequireAuth)...))

	// Scanner page shell, guarded but public-fallback to a login prompt.
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(),
		s.WebMiddleware(s.RequirePage(PageGuardOptions{RedirectTo: "/auth/login"}))...))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
