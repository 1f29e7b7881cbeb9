package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
)

type claimsContextKey struct{}

// RouterOptions controls the construction of the orbitapi HTTP router.
type RouterOptions struct {
	IAMService *iam.Service
	Issuer     *auth.TokenIssuer

	// CORSOrigins lists allowed browser origins. Empty disables CORS handling.
	CORSOrigins []string

	// Middleware is appended after the baseline middleware stack.
	Middleware []func(http.Handler) http.Handler

	HealthHandler http.HandlerFunc
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the auth endpoints mounted.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Village-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	for _, mw := range opts.Middleware {
		r.Use(mw)
	}

	health := opts.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}
	r.Get("/health", health)

	h := &authHandlers{service: opts.IAMService}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/refresh-token", h.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(opts.Issuer))
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)
		})
	})

	return r
}

// requireAuth verifies the bearer token and stores its claims in the request
// context. Missing, malformed, expired, and revoked tokens all yield 401.
func requireAuth(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "Missing or malformed Authorization header")
				return
			}

			claims, err := issuer.ParseAccessToken(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "Access token is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFromContext returns the verified access claims for the request,
// or nil when the request did not pass requireAuth.
func claimsFromContext(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(claimsContextKey{}).(*auth.AccessClaims)
	return claims
}
