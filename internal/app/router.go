package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pdt-ict/portal/internal/auth"
	"github.com/pdt-ict/portal/internal/documents"
	"github.com/pdt-ict/portal/internal/observability"
	"github.com/pdt-ict/portal/internal/platform/httpx"
	"github.com/pdt-ict/portal/internal/shared"
	"github.com/pdt-ict/portal/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	DocumentsHandler *documents.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]string{
				"status":    "OK",
				"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			})
		})

		if params.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				limit, window := 100, 15*time.Minute
				if params.Config != nil && params.Config.AuthRateLimit > 0 {
					limit, window = params.Config.AuthRateLimit, params.Config.AuthRateWindow
				}
				r.Use(RateLimit(limit, window, "Too many requests from this IP, please try again later."))
				params.AuthHandler.MountRoutes(r)
			})
		}
		if params.DocumentsHandler != nil && params.AuthHandler != nil {
			r.Route("/documents", func(r chi.Router) {
				r.Use(params.AuthHandler.RequireAuth())
				params.DocumentsHandler.MountRoutes(r)
			})
		}
		if params.JobHandler != nil && params.AuthHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.AuthHandler.RequireAuth())
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}

// LoginLimiter throttles credential endpoints per client IP.
func LoginLimiter(cfg *Config) func(http.Handler) http.Handler {
	limit, window := 5, 15*time.Minute
	if cfg != nil && cfg.LoginRateLimit > 0 {
		limit, window = cfg.LoginRateLimit, cfg.LoginRateWindow
	}
	return RateLimit(limit, window, "Too many login attempts, please try again after 15 minutes")
}
