// Package http wires the authentication service onto net/http. Routes are
// registered on a standard ServeMux; cross-cutting behaviour (request
// logging, bearer authentication, rate limiting) is applied per route with
// httpx middleware chains.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/internal/auth/store"
	"github.com/trailpost/trailpost/pkg/diagx"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// Router owns the HTTP surface of the service.
type Router struct {
	Mux *http.ServeMux

	UserService  *service.UserService
	TokenService *service.TokenService
	Store        store.Store
	Diag         *diagx.Sink
	Log          *slog.Logger

	Version   string
	startTime time.Time
}

// NewRouter builds the mux and registers every route.
func NewRouter(
	users *service.UserService,
	tokens *service.TokenService,
	st store.Store,
	diag *diagx.Sink,
	log *slog.Logger,
	version string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		UserService:  users,
		TokenService: tokens,
		Store:        st,
		Diag:         diag,
		Log:          log,
		Version:      version,
		startTime:    time.Now(),
	}
	r.applyRoutes()
	return r
}

func (r *Router) applyRoutes() {
	authn := httpx.AuthnMiddleware(r.TokenService, r.Diag)

	// Credential endpoints are keyed by client IP: callers are anonymous here.
	r.Mux.Handle("POST /v1/auth/register", httpx.Chain(
		&RegisterHandler{UserService: r.UserService, TokenService: r.TokenService},
		httpx.RateLimitByIP(httpx.StrictLimit),
	))
	r.Mux.Handle("POST /v1/auth/login", httpx.Chain(
		&LoginHandler{UserService: r.UserService, TokenService: r.TokenService},
		httpx.RateLimitByIP(httpx.StrictLimit),
	))

	// Refresh requires a currently valid token; invalid ones get the uniform
	// 401 from the middleware before the handler runs.
	r.Mux.Handle("POST /v1/auth/refresh", httpx.Chain(
		&RefreshHandler{TokenService: r.TokenService},
		authn,
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	))

	r.Mux.Handle("GET /v1/userinfo", httpx.Chain(
		&UserInfoHandler{UserService: r.UserService},
		authn,
		httpx.RateLimitBySubject(httpx.LenientLimit),
	))

	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.Version))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.Store, r.startTime, r.Version))
}

// Handler returns the mux wrapped with request logging.
func (r *Router) Handler() http.Handler {
	return slogx.HTTPMiddleware(r.Log)(r.Mux)
}
