package main

import (
	"context"
	"fmt"
	"log/slog"

	rediscache "github.com/globedrop/ngo-directory/internal/adapters/cache/redis"
	"github.com/globedrop/ngo-directory/internal/adapters/store/memory"
	"github.com/globedrop/ngo-directory/internal/adapters/store/postgres"
	"github.com/globedrop/ngo-directory/internal/platform/config"
	"github.com/globedrop/ngo-directory/internal/ports"
)

// store bundles the repositories of the configured driver.
type store struct {
	orgs  ports.OrganizationRepository
	users ports.UserRepository
	close func()
}

// openStore opens the configured store and registers its health check.
func openStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry *ports.DefaultHealthRegistry,
) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if cfg.Database.Migrate {
			if err := postgres.RunMigrations(cfg.Database.URL, logger); err != nil {
				return nil, fmt.Errorf("running migrations: %w", err)
			}
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		if err := registry.Register(postgres.NewHealthChecker(pool)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("registering postgres health check: %w", err)
		}

		return &store{
			orgs:  postgres.NewOrganizationRepository(pool),
			users: postgres.NewUserRepository(pool),
			close: pool.Close,
		}, nil

	default:
		mem := memory.NewStore()
		if err := registry.Register(mem); err != nil {
			return nil, fmt.Errorf("registering memory store health check: %w", err)
		}

		logger.Warn("using in-memory store, data is lost on restart")

		return &store{
			orgs:  mem.Organizations(),
			users: mem.Users(),
			close: func() {},
		}, nil
	}
}

// openCache returns the Redis cache when enabled, or a nil cache.
func openCache(cfg *config.Config, registry *ports.DefaultHealthRegistry) (ports.Cache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	client := rediscache.NewClient(cfg.Redis)
	cache := rediscache.NewCache(client)

	if err := registry.Register(cache); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("registering redis health check: %w", err)
	}

	return cache, func() { _ = client.Close() }, nil
}
