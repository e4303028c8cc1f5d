package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// Scopes guarding the admin and profile endpoints.
const (
	ScopeAdminRead   = "admin:read"
	ScopeAdminWrite  = "admin:write"
	ScopeProfileRead = "profile:read"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService        *service.TokenService
	AuthorizeService    *service.AuthorizeService
	Credentials         *service.Credentials
	ClientService       *service.ClientService
	UserService         *service.UserService
	HousekeepingService *service.HousekeepingService
}

func NewRouter(issuer, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticator accepts live access tokens from the token registry.
func (r *Router) authenticator() httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(ctx context.Context, token string) (httpx.Principal, error) {
		rec, err := r.TokenService.Validate(ctx, token, "")
		if err != nil {
			return httpx.Principal{}, err
		}
		return httpx.Principal{
			Subject: rec.Access.Subject,
			TokenID: rec.ID,
			Scope:   rec.Scope,
		}, nil
	})
}

// secured chains bearer authentication, an optional scope requirement and
// a per-user rate limit in front of h.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig, anyScope ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.authenticator())}
	if len(anyScope) > 0 {
		mws = append(mws, httpx.RequireAnyScope(anyScope...))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerOAuth2() {
	// POST /authorize checks resource owner passwords, so it is limited
	// per address and username.
	authorizeHandler := &AuthorizeHandler{AuthorizeService: r.AuthorizeService}
	r.Mux.Handle("POST /v1/oauth2/authorize",
		httpx.Chain(authorizeHandler,
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)

	tokenHandler := &TokenHandler{
		TokenService: r.TokenService,
		Credentials:  r.Credentials,
		Issuer:       r.issuer,
	}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndClient(httpx.StrictLimit),
		),
	)

	introspectHandler := &IntrospectHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/oauth2/introspect",
		r.secured(introspectHandler, httpx.ModerateLimit),
	)
}

func (r *Router) registerUsers() {
	h := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/userinfo", r.secured(h, httpx.PublicLimit, ScopeProfileRead))
}

func (r *Router) registerAdmin() {
	clients := &ClientsHandler{ClientService: r.ClientService}
	r.Mux.Handle("POST /v1/admin/clients",
		r.secured(http.HandlerFunc(clients.HandleCreate), httpx.ModerateLimit, ScopeAdminWrite))
	r.Mux.Handle("GET /v1/admin/clients",
		r.secured(http.HandlerFunc(clients.HandleList), httpx.ModerateLimit, ScopeAdminRead, ScopeAdminWrite))
	r.Mux.Handle("PUT /v1/admin/clients/{id}/scopes",
		r.secured(http.HandlerFunc(clients.HandleUpdateScopes), httpx.ModerateLimit, ScopeAdminWrite))
	r.Mux.Handle("DELETE /v1/admin/clients/{id}",
		r.secured(http.HandlerFunc(clients.HandleDelete), httpx.ModerateLimit, ScopeAdminWrite))

	users := &UsersHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/admin/users",
		r.secured(http.HandlerFunc(users.HandleCreate), httpx.ModerateLimit, ScopeAdminWrite))
	r.Mux.Handle("PUT /v1/admin/users/{id}/password",
		r.secured(http.HandlerFunc(users.HandleChangePassword), httpx.ModerateLimit, ScopeAdminWrite))
	r.Mux.Handle("DELETE /v1/admin/users/{id}",
		r.secured(http.HandlerFunc(users.HandleDelete), httpx.ModerateLimit, ScopeAdminWrite))

	sweep := &SweepHandler{HousekeepingService: r.HousekeepingService}
	r.Mux.Handle("POST /v1/admin/sweep", r.secured(sweep, httpx.ModerateLimit, ScopeAdminWrite))
}

func (r *Router) registerSystem() {
	// Monitoring may poll these often.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService, r.AuthorizeService),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
