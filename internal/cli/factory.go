// Package cli wires configuration into the adapters used by the funnel
// commands: where definitions come from, where reports and sessions go.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/funnel/internal/config"
	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/pkg/adapters/file"
	httpAdapter "github.com/aretw0/funnel/pkg/adapters/http"
	"github.com/aretw0/funnel/pkg/adapters/memory"
	"github.com/aretw0/funnel/pkg/adapters/redis"
	"github.com/aretw0/funnel/pkg/persistence/middleware"
	"github.com/aretw0/funnel/pkg/ports"
)

// NewLogger builds the process logger from configuration. Debug forces the
// debug level.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.Format(cfg.LogFormat)), nil
}

// NewSource picks where definitions are fetched from: the remote API when
// one is configured, the local catalog otherwise. The returned reporter is
// nil for the catalog, where there is nothing to report to.
func NewSource(cfg *config.Config, logger *slog.Logger) (ports.FunnelSource, ports.Reporter) {
	if cfg.APIURL != "" {
		client := httpAdapter.NewClient(cfg.APIURL,
			httpAdapter.WithCache(cfg.CacheSize, cfg.CacheTTL),
			httpAdapter.WithClientLogger(logger),
		)
		return client, client
	}
	return file.NewCatalog(cfg.CatalogDir, file.WithCatalogLogger(logger)), nil
}

// Backend is the storage behind the reference service.
type Backend struct {
	Funnels ports.FunnelStore
	Leads   ports.LeadStore
	Events  ports.EventStore
	States  ports.StateStore
	Locker  ports.DistributedLocker // nil for in-process storage

	close func() error
}

// OpenBackend connects the configured storage and applies the session
// protections the configuration asks for.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mws, err := sessionMiddlewares(cfg)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if len(mws) > 0 {
		logger.Info("protecting stored sessions", "masked_fields", len(cfg.MaskFields), "encrypted", cfg.SessionKey != "")
		b.States = middleware.Chain(b.States, mws...)
	}
	return b, nil
}

func sessionMiddlewares(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskFields) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.MaskFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	active, fallbacks, err := cfg.SessionKeys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.Redis.SessionTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis storage", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return &Backend{
			Funnels: store,
			Leads:   store,
			Events:  store,
			States:  store,
			Locker:  redis.NewLocker(store.Client(), "funnel:"),
			close:   store.Close,
		}, nil
	default:
		logger.Info("using in-memory storage")
		reports := memory.NewReportStore()
		return &Backend{
			Funnels: memory.NewFunnelStore(),
			Leads:   reports,
			Events:  reports,
			States:  memory.NewStore(),
		}, nil
	}
}

// Seed copies every catalog definition into the funnel store and returns
// how many were stored.
func (b *Backend) Seed(ctx context.Context, catalog *file.Catalog) (int, error) {
	funnels, err := catalog.Funnels(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range funnels {
		if err := b.Funnels.SaveFunnel(ctx, f); err != nil {
			return 0, fmt.Errorf("seed funnel %s: %w", f.UUID, err)
		}
	}
	return len(funnels), nil
}

// Close releases storage connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}
