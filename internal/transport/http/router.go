// Package http wires the cleaning engine to its HTTP surface: a chi router
// exposing the cleaning endpoint, health checks, and Prometheus metrics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dqcli/internal/middleware"
	"dqcli/internal/pipeline"
)

// RouterConfig carries the collaborators the router needs.
type RouterConfig struct {
	Defaults pipeline.Options
	Tracer   *pipeline.Tracer
	Registry *prometheus.Registry
	Logger   *slog.Logger
	Version  string
	Timeout  time.Duration
}

// NewRouter builds the full route tree. Middleware order is RequestID,
// RealIP, StructuredLogger, Recoverer, Timeout; the metrics endpoint sits
// outside the logging chain.
func NewRouter(cfg RouterConfig) chi.Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.StructuredLogger(cfg.Logger))
		r.Use(middleware.Recoverer(cfg.Logger))
		r.Use(chimiddleware.Timeout(cfg.Timeout))

		clean := NewCleanHandler(cfg.Defaults, cfg.Tracer, cfg.Logger)
		health := NewHealthHandler(cfg.Version)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/clean", clean.Clean)
			r.Get("/health", health.HealthCheck)
			r.Get("/version", health.Version)
		})
	})

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
}
