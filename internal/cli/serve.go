package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/internal/config"
	"github.com/aretw0/funnel/pkg/adapters/file"
	httpAdapter "github.com/aretw0/funnel/pkg/adapters/http"
	"github.com/aretw0/funnel/pkg/observability"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/aretw0/funnel/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// NewServerHandler assembles the reference service over a backend: public
// funnel API, hosted sessions, metrics.
func NewServerHandler(ctx context.Context, backend *Backend, logger *slog.Logger) (http.Handler, *funnel.Engine, error) {
	metrics := observability.NewMetrics()
	engine := funnel.New(
		funnel.WithReporter(ports.StoreReporter{Leads: backend.Leads, Events: backend.Events}),
		funnel.WithLifecycleHooks(observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger))),
		funnel.WithLogger(logger),
	)

	managerOpts := []session.Option{session.WithLogger(logger)}
	if backend.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(backend.Locker))
	}
	manager := session.NewManager(backend.States, managerOpts...)

	srv, err := httpAdapter.NewServer(ctx, backend.Funnels, backend.Leads, backend.Events,
		httpAdapter.WithSessions(manager, engine.Runtime()),
		httpAdapter.WithMetricsHandler(metrics.Handler()),
		httpAdapter.WithServerLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return srv.Handler(), engine, nil
}

// Serve runs the reference service until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage", "err", err)
		}
	}()

	n, err := backend.Seed(ctx, file.NewCatalog(cfg.CatalogDir, file.WithCatalogLogger(logger)))
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog loaded", "dir", cfg.CatalogDir, "funnels", n)

	handler, engine, err := NewServerHandler(ctx, backend, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("funnel server listening", "addr", srv.Addr, "version", funnel.Version)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		// Flush reports still in flight.
		engine.Wait()
		logger.Info("funnel server stopped")
		return nil
	}
}
