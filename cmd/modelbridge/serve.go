package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"modelbridge/internal/bridge"
	"modelbridge/internal/config"
	"modelbridge/internal/engine"
	"modelbridge/internal/httpapi"
	"modelbridge/internal/manager"
)

// newService builds the engine, registry and bridge described by cfg.
func newService(cfg config.Config, log zerolog.Logger) (*bridge.Service, *manager.Manager, error) {
	eng, err := engine.New(cfg.Engine, engine.Options{ORTLibraryPath: cfg.ORTLibraryPath})
	if err != nil {
		return nil, nil, err
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Engine:    eng,
		MaxModels: cfg.MaxModels,
		Logger:    &log,
	})
	if r := mgr.SanityCheck(); !r.Available {
		log.Warn().Str("engine", r.Engine).Str("error", r.Error).Msg("engine unavailable; loads will fail")
	}
	return bridge.NewService(mgr, cfg.ModelsDir, &log), mgr, nil
}

func runServe(ctx context.Context, cfg config.Config, callTimeout time.Duration, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, _, err := newService(cfg, log)
	if err != nil {
		return err
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCallTimeout(callTimeout)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("engine", cfg.Engine).Str("models_dir", cfg.ModelsDir).Int("max_models", cfg.MaxModels).Msg("modelbridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = svc.Detach()
			return err
		}
	case <-ctx.Done():
	}

	// Graceful shutdown (Ctrl+C / SIGTERM): stop accepting calls, then tear
	// down every live module.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := svc.Detach(); err != nil {
		return err
	}
	log.Info().Msg("modelbridge stopped")
	return nil
}
