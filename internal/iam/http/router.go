// Package http wires the service layer to the public HTTP surface. Routes
// declare which auth strategies and roles admit them; the guard middleware
// enforces the declarations before a handler runs.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/registry"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	dispatcher   *guard.Dispatcher
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	registry registry.Registry

	AuthService    *service.AuthService
	APIKeyService  *service.APIKeyService
	OTPService     *service.OTPService
	SessionService *service.SessionService
	SessionTTL     time.Duration
}

func NewRouter(
	dispatcher *guard.Dispatcher,
	buildVersion string,
	st store.Store,
	reg registry.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		dispatcher:   dispatcher,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		registry:     reg,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOTP()
	r.registerAPIKeys()
	r.registerUserInfo()
	r.registerAdmin()
	r.registerSessions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /sign-up - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/auth/sign-up",
		httpx.Chain(http.HandlerFunc(h.HandleSignUp),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /sign-in - strict rate limit by IP + email to slow brute force
	r.Mux.Handle("POST /v1/auth/sign-in",
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /refresh - moderate rate limit; the token itself gates access
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /sign-out - requires a live access token
	r.Mux.Handle("POST /v1/auth/sign-out",
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOTP() {
	h := &OTPHandler{OTPService: r.OTPService}

	r.Mux.Handle("POST /v1/auth/2fa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{APIKeyService: r.APIKeyService}

	// API keys are minted and listed with a bearer token only; a key
	// cannot mint further keys.
	r.Mux.Handle("POST /v1/api-keys",
		httpx.Chain(http.HandlerFunc(h.HandleMint),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/api-keys",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUserInfo() {
	h := &UserInfoHandler{Store: r.store}

	// Either credential type resolves a principal here.
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer, guard.AuthTypeAPIKey),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Store: r.store}

	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleListUsers),
			guard.Authenticate(r.dispatcher, guard.AuthTypeBearer),
			guard.RequireRoles(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{SessionService: r.SessionService, TTL: r.SessionTTL}

	r.Mux.Handle("POST /v1/session/sign-in",
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("GET /v1/session/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/session/sign-out",
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.registry))
}
