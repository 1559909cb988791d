package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/campusid/auth/api/auth" // Swagger docs
	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/guard"
	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/slogx"
)

// RateLimits are the three profiles routes are assigned to.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the built-in profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits

	store    store.Store
	registry registry.Registry
	metrics  *metrics.Metrics

	TokenService   *service.TokenService
	AuthService    *service.AuthService
	AccountService *service.AccountService
	SetupService   *service.SetupService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	reg registry.Registry,
	m *metrics.Metrics,
	limits RateLimits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		store:        st,
		registry:     reg,
		metrics:      m,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.HTTPMiddleware(),
	}

	return r
}

// Use appends a global middleware. It wraps inside the ones already set.
func (r *Router) Use(mw httpx.Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerAdmin()
	r.registerSetup()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Authentication Service API
//	@version		0.1.0
//	@description	Email and password sign-in for a campus platform. Administrators provision accounts
//	@description	with a national identity number (CIN) that doubles as first password; users then
//	@description	change it and complete their profile.
//	@description
//	@description				Access tokens are HS256 JWTs carrying id, role and email.
//
//	@host						localhost:4000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /login - strict rate limit by IP (credential guessing)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)

	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)
}

func (r *Router) registerProfile() {
	h := &MeHandler{AuthService: r.AuthService}

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			guard.RequireAuthenticated(r.TokenService),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)

	// PUT /me - strict by user, it can check a current password
	r.Mux.Handle("PUT /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			guard.RequireAuthenticated(r.TokenService),
			httpx.RateLimitByUser(r.limits.Strict),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminUsersHandler{AccountService: r.AccountService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			guard.RequireRole(r.TokenService, domain.RoleAdmin),
			httpx.RateLimitByUser(r.limits.Moderate),
		)
	}

	r.Mux.Handle("POST /api/auth/admin/users", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /api/auth/admin/users", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("PUT /api/auth/admin/users/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /api/auth/admin/users/{id}", admin(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("GET /api/auth/admin-only", admin(http.HandlerFunc(AdminOnlyHandler)))
}

func (r *Router) registerSetup() {
	// POST /setup - strict rate limit by IP (one-time endpoint, token guessing)
	r.Mux.Handle("POST /api/auth/setup",
		httpx.Chain(&SetupHandler{SetupService: r.SetupService},
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.registry),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
