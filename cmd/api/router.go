package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/groundsforsupport/donate/internal/config"
	"github.com/groundsforsupport/donate/internal/health"
	"github.com/groundsforsupport/donate/internal/obs"
	"github.com/groundsforsupport/donate/internal/payment"
	"github.com/groundsforsupport/donate/internal/security"
	"github.com/groundsforsupport/donate/internal/web"
)

type routerDeps struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Tracing     bool
	HTTPMetrics *obs.HTTPMetrics
	Payment     *payment.Handler
	Page        *web.Handler
	Health      health.Handler
}

func newRouter(d routerDeps) chi.Router {
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.HSTS}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	r.Group(func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins(cfg),
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		api.Use(obs.RoutePatternMiddleware)
		api.Post("/create-payment-intent", d.Payment.CreateIntent)
		api.Options("/create-payment-intent", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Get("/", d.Page.Index)
	r.Post("/", d.Page.Donate)
	r.Get("/*", d.Page.Assets)

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
