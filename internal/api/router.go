package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
)

type RouterConfig struct {
	Service        *appointment.Service
	Events         EventLister // nil when the event log is disabled
	Dependencies   []Dependency
	Metrics        *metrics.PollMetrics
	MetricsHandler http.Handler // defaults to promhttp.Handler()
	Logger         zerolog.Logger
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/upcoming", upcomingAppointmentsHandler(cfg.Service))
	r.Get("/roster", rosterHandler(cfg.Service, cfg.Metrics))
	r.Get("/notifications", notificationsHandler(cfg.Events))
	r.Get("/bmi", bmiHandler)

	return r
}
