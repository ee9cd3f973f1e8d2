package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackgods/clinic-dashboard/internal/api"
	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/backend"
	"github.com/hackgods/clinic-dashboard/internal/config"
	"github.com/hackgods/clinic-dashboard/internal/db"
	"github.com/hackgods/clinic-dashboard/internal/events"
	"github.com/hackgods/clinic-dashboard/internal/logging"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
	redisclient "github.com/hackgods/clinic-dashboard/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("prod", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("backend", cfg.BackendURL).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Path:    cfg.AppointmentPath,
		Token:   cfg.BackendToken,
		Timeout: cfg.FetchTimeout,
	})
	deps := []api.Dependency{{Name: "backend", Pinger: client, Required: true}}

	var lister api.EventLister
	if cfg.EventLogEnabled() {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, 4)
		cancelPg()
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()
		logger.Info().Msg("connected to Postgres")

		repo := events.NewPgRepository(pgPool)
		if err := repo.EnsureSchema(rootCtx); err != nil {
			logger.Fatal().Err(err).Msg("event log schema error")
		}
		lister = repo
		deps = append(deps, api.Dependency{Name: "postgres", Pinger: pgPool})
	}

	if cfg.RedisEnabled() {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")
		deps = append(deps, api.Dependency{Name: "redis", Pinger: api.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})})
	}

	svc := appointment.NewService(client, appointment.NewClassifier(cfg.Location))

	router := api.NewRouter(api.RouterConfig{
		Service:      svc,
		Events:       lister,
		Dependencies: deps,
		Metrics:      metrics.NewPollMetrics(prometheus.DefaultRegisterer),
		Logger:       logger,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()
	logger.Info().Str("addr", srv.Addr).Msg("listening")

	<-rootCtx.Done()

	logger.Info().Msg("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
