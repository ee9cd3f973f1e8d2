package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/backend"
	"github.com/hackgods/clinic-dashboard/internal/config"
	"github.com/hackgods/clinic-dashboard/internal/db"
	"github.com/hackgods/clinic-dashboard/internal/events"
	"github.com/hackgods/clinic-dashboard/internal/logging"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
	"github.com/hackgods/clinic-dashboard/internal/poller"
	redisclient "github.com/hackgods/clinic-dashboard/internal/redis"
)

func main() {
	once := flag.Bool("once", false, "poll a single time and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("prod", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	if err := checkOneShot(*once, cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid mode")
	}
	logger.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.PollInterval).
		Str("scope", cfg.StatusScope).
		Msg("status-watcher starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollMetrics := metrics.NewPollMetrics(prometheus.DefaultRegisterer)
	sinks := poller.MultiSink{poller.NewLogSink(logger)}

	if cfg.EventLogEnabled() {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, 2)
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
		sinks = append(sinks, events.NewSink(repo))
	}

	var store poller.StatusStore = poller.NewMemoryStore()
	var locker poller.Locker
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

		store = redisclient.NewStatusStore(rdb, cfg.StatusScope, cfg.StatusTTL)
		locker = redisclient.NewRedisPollLocker(rdb, cfg.LockTTL)
	}

	p := poller.New(poller.Config{
		Source: backend.NewClient(backend.Config{
			BaseURL: cfg.BackendURL,
			Path:    cfg.AppointmentPath,
			Token:   cfg.BackendToken,
			Timeout: cfg.FetchTimeout,
		}),
		Classifier:   appointment.NewClassifier(cfg.Location),
		Detector:     poller.NewDetector(store),
		Sink:         sinks,
		Interval:     cfg.PollInterval,
		FetchTimeout: cfg.FetchTimeout,
		Locker:       locker,
		LockKey:      cfg.StatusScope,
		Logger:       logger,
		Metrics:      pollMetrics,
	})

	if *once {
		start := time.Now()
		if err := p.PollOnce(rootCtx); err != nil {
			logger.Fatal().Err(err).Msg("poll failed")
		}
		logger.Info().Dur("duration", time.Since(start)).Msg("poll complete")
		return
	}

	metricsSrv := serveMetrics(cfg.WatcherPort, logger)

	if err := p.Start(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("start poller")
	}

	<-rootCtx.Done()
	logger.Info().Msg("shutdown signal received, stopping status watcher")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("stop poller")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("stop metrics server")
	}
}

var errOneShotNeedsRedis = errors.New("-once needs REDIS_URL or REDIS_ADDR: an in-memory store sees every appointment for the first time and never emits")

// checkOneShot refuses one-shot mode unless observed statuses outlive the process.
func checkOneShot(once bool, cfg config.Config) error {
	if once && !cfg.RedisEnabled() {
		return errOneShotNeedsRedis
	}
	return nil
}

func serveMetrics(port string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}
