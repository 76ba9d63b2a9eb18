package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/adapter"
	"github.com/castboard/scraper/internal/config"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/service"
	"github.com/castboard/scraper/internal/service/cache"
	"github.com/castboard/scraper/internal/service/database"
	"github.com/castboard/scraper/internal/service/matcher"
	"github.com/castboard/scraper/internal/service/status"
	"github.com/castboard/scraper/internal/service/store"
)

// Container bundles the assembled services behind the scraper commands.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Runner    *service.Runner
	Sources   *store.SourceRepository
	Locations *store.LocationRepository
	Listings  *store.ListingRepository
	Status    *status.Publisher

	closers []func()
}

// fetcherFactory adapts the adapter registry plus per-mode fetcher
// construction to the runner's AdapterFactory. Fetchers are built per run so
// browser contexts only exist while their source is being scraped.
type fetcherFactory struct {
	registry *adapter.Registry
	opts     fetch.Options
	override float64
	logger   *zap.Logger
}

func (f *fetcherFactory) New(cfg domain.SourceConfig) (adapter.Adapter, error) {
	if f.override > 0 {
		cfg.RateLimitSeconds = f.override
	}
	fetcher, err := fetch.NewForSource(cfg, f.opts)
	if err != nil {
		return nil, err
	}
	ad, err := f.registry.New(cfg, fetcher, f.logger)
	if err != nil {
		_ = fetcher.Close()
		return nil, err
	}
	return ad, nil
}

// Build assembles the full scraper stack. All heavyweight initialization
// (database, schema, redis) happens here so the commands stay thin.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	postgres, err := database.NewPostgresService(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgres.Close()
	})

	if err := postgres.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	// Redis is optional; without it status publishing is a no-op.
	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewCacheService(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	}

	sources := store.NewSourceRepository(postgres, logger)
	locations := store.NewLocationRepository(postgres, logger)
	locationMatcher := matcher.NewLocationMatcher(locations, logger)
	listings := store.NewListingRepository(postgres, locationMatcher, logger)
	publisher := status.NewPublisher(cacheSvc, logger)

	factory := &fetcherFactory{
		registry: adapter.NewRegistry(),
		opts: fetch.Options{
			Timeout:    cfg.Scraper.RequestTimeout,
			ChromePath: cfg.Scraper.ChromePath,
			Headless:   cfg.Scraper.Headless,
			Logger:     logger,
		},
		override: cfg.Scraper.RateLimitOverride,
		logger:   logger,
	}

	runner := service.NewRunner(factory, sources, listings, publisher, cfg.Scraper, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Runner:    runner,
		Sources:   sources,
		Locations: locations,
		Listings:  listings,
		Status:    publisher,
		closers:   closers,
	}, nil
}

// Shutdown releases everything Build opened, in reverse order.
func (c *Container) Shutdown() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
