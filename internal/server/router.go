// Package server assembles the HTTP router.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"postboard/internal/auth"
	"postboard/internal/feed"
	"postboard/internal/httpx"
	"postboard/internal/upload"
	"postboard/pkg/logger"
	"postboard/pkg/ratelimit"
	"postboard/pkg/requestid"
)

// Healthcheck probes one dependency.
type Healthcheck func(ctx context.Context) error

// Deps carries everything the router needs.
type Deps struct {
	Auth    *auth.Handler
	AuthSvc *auth.Service
	Feed    *feed.Handler
	Upload  *upload.Handler

	// Limiter throttles the credential endpoints. Optional.
	Limiter ratelimit.Limiter

	// StaticDir serves uploaded files under /static when non-empty.
	StaticDir string

	// Healthchecks are probed by GET /health, keyed by dependency name.
	Healthchecks map[string]Healthcheck

	Log *slog.Logger
}

// New builds the application router.
func New(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestid.Header},
		ExposedHeaders: []string{requestid.Header},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"data": "banana"})
	})
	r.Get("/health", healthHandler(deps.Healthchecks))

	var limit []func(http.Handler) http.Handler
	if deps.Limiter != nil {
		limit = append(limit, ratelimit.Middleware(deps.Limiter, ratelimit.ClientIP))
	}

	deps.Auth.Routes(r, limit...)
	deps.Feed.Routes(r, deps.AuthSvc.RequireUser)
	deps.Upload.Routes(r, deps.AuthSvc.RequireUser)

	if deps.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}

func healthHandler(checks map[string]Healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		httpx.JSON(w, code, status)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				logger.Component("http"),
			)
		})
	}
}
