package web

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions toggles optional middleware
type RouterOptions struct {
	// ReportPanics forwards recovered panics to Sentry. The Sentry client must
	// already be initialised.
	ReportPanics bool
}

// NewRouter creates a new Chi router with all middleware and routes
func NewRouter(handler *Handler, logger *zap.Logger, rateLimiter *RateLimiter, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Global middleware chain
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	if opts.ReportPanics {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Pages
	r.Get("/", handler.Home)
	r.Get("/dashboard", handler.Dashboard)
	r.Get("/analytics", handler.Analytics)
	r.Get("/analytics/{id}", handler.LinkAnalytics)
	r.Get("/search", handler.Search)
	r.Get("/links/{id}/edit", handler.EditForm)
	r.Get("/token", handler.TokenForm)

	// Form submissions
	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(ParseForms)

		r.Post("/", handler.CreateLink)
		r.Post("/alias", handler.GenerateAlias)
		r.Post("/links/bulk", handler.BulkCreate)
		r.Post("/links/{id}/edit", handler.UpdateLink)
		r.Post("/links/{id}/toggle", handler.ToggleLink)
		r.Post("/links/{id}/delete", handler.DeleteLink)
		r.Post("/token", handler.SaveToken)
		r.Post("/token/clear", handler.ClearToken)
	})

	r.NotFound(handler.NotFound)

	return r
}
