package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/roster/internal/auth"
	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/handlers"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/middleware"
	"github.com/BradenHooton/roster/internal/models"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the collaborators the router wires together.
type Dependencies struct {
	AccountHandler *handlers.AccountHandler
	AuthHandler    *handlers.AuthHandler
	TokenManager   *auth.TokenManager
	Accounts       auth.AccountFetcher
	Metrics        *metrics.Metrics
	IPConfig       *pkghttp.IPConfig
	HealthCheck    func(ctx context.Context) error
	Logger         *slog.Logger
}

// NewRouter builds the HTTP handler with the global middleware stack.
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.SecureLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, "Resource not found")
	})

	RegisterRoutes(router, cfg, deps)
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, cfg *config.Config, deps Dependencies) {
	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(
		middleware.RateLimitConfig{RequestsPerMinute: cfg.Auth.LoginRateLimit}, deps.IPConfig,
	)).Post("/auth/login", deps.AuthHandler.Login)

	router.Get("/health", healthHandler(deps.HealthCheck))
	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Admin-only routes
	router.Route("/accounts", func(r chi.Router) {
		r.Use(auth.Authenticate(deps.TokenManager))
		r.Use(auth.RequireRole(deps.Accounts, models.RoleAdmin, deps.Logger))
		r.Use(middleware.RateLimitByAccount(
			middleware.RateLimitConfig{RequestsPerMinute: cfg.Listing.RateLimit}, deps.IPConfig,
		))
		deps.AccountHandler.RegisterRoutes(r)
	})
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := check(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	}
}
