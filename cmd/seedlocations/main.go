package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/adapter"
	"github.com/castboard/scraper/internal/app"
	"github.com/castboard/scraper/internal/config"
	"github.com/castboard/scraper/internal/util"
)

// Seeds every source's town/label catalog, default rows included. Safe to
// rerun; existing rows are left untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Shutdown()

	ctx := context.Background()
	seeds := adapter.LocationSeeds()
	failures := 0

	for _, sourceCfg := range adapter.Catalog() {
		src, err := container.Sources.GetOrCreate(ctx, sourceCfg)
		if err != nil {
			logger.Error("Failed to resolve source", zap.String("source", sourceCfg.Key), zap.Error(err))
			failures++
			continue
		}

		created, err := container.Locations.Seed(ctx, src.ID, seeds[sourceCfg.Key])
		if err != nil {
			logger.Error("Failed to seed locations", zap.String("source", sourceCfg.Key), zap.Error(err))
			failures++
			continue
		}
		fmt.Printf("%s: %d location(s) created\n", sourceCfg.Key, created)
	}

	if failures > 0 {
		container.Shutdown()
		logger.Sync()
		os.Exit(1)
	}
}
