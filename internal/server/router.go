// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/arguments"
	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/exports"
	"github.com/ayush/argumetrics/internal/middleware"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Log       *zap.Logger
	Auth      *auth.Service
	Arguments arguments.Store
	Journal   *activity.Journal
	// Exports may be nil; the export routes then answer 503.
	Exports     exports.FileStore
	Cookie      auth.CookieConfig
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	if d.Journal == nil {
		d.Journal = activity.NewJournal(nil, d.Log)
	}

	authHandler := auth.NewHandler(d.Auth, d.Journal, d.Cookie, d.Log)
	argumentHandler := arguments.NewHandler(d.Arguments, d.Journal, d.Log)
	activityHandler := activity.NewHandler(d.Journal, d.Log)
	exportHandler := exports.NewHandler(d.Exports, d.Arguments, d.Log)
	requireAuth := middleware.RequireAuth(d.Auth, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Recover(d.Log))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user", authHandler.Me)

			r.Route("/arguments", func(r chi.Router) {
				r.Get("/", argumentHandler.List)
				r.Post("/", argumentHandler.Create)
				r.Get("/{id}", argumentHandler.Get)
				r.Delete("/{id}", argumentHandler.Delete)
			})
			r.Get("/reports/archetypes", argumentHandler.Report)
			r.Get("/activity", activityHandler.List)

			r.Post("/exports/arguments", exportHandler.Create)
			r.Get("/exports/{key}", exportHandler.Download)
		})
	})

	return r
}
