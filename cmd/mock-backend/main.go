package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-dashboard/internal/config"
	"github.com/hackgods/clinic-dashboard/internal/logging"
	"github.com/hackgods/clinic-dashboard/internal/mockbackend"
)

func main() {
	cfg := config.LoadMockBackend()
	logger := logging.New(cfg.Env, cfg.LogLevel)

	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	store := mockbackend.Generate(seed, cfg.Patients, cfg.Appointments, time.Now())
	logger.Info().
		Uint64("seed", seed).
		Int("patients", cfg.Patients).
		Int("appointments", cfg.Appointments).
		Dur("confirm_every", cfg.ConfirmEvery).
		Msg("mock-backend generated data")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go mockbackend.RunConfirmer(rootCtx, store, cfg.ConfirmEvery, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mockbackend.NewRouter(store, cfg.Token),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
