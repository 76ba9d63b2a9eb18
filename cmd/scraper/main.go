package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/adapter"
	"github.com/castboard/scraper/internal/app"
	"github.com/castboard/scraper/internal/config"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service"
	"github.com/castboard/scraper/internal/util"
)

func main() {
	sourceKey := flag.String("source", "", "scrape a single source key instead of all enabled sources")
	parallel := flag.Bool("parallel", false, "scrape sources concurrently (items within a source stay sequential)")
	list := flag.Bool("list", false, "list registered sources and exit")
	flag.Parse()

	if *list {
		listSources()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Castboard scraper starting...",
		zap.String("log_level", cfg.Logging.Level),
		zap.Bool("parallel", *parallel),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Shutdown()

	// Cancel the run on SIGINT/SIGTERM; the runner stops between items.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	var reports []*domain.RunReport
	if *sourceKey != "" {
		report, _ := container.Runner.RunSource(ctx, *sourceKey)
		reports = append(reports, report)
	} else {
		reports = container.Runner.RunAll(ctx, *parallel)
	}

	failed := false
	for _, report := range reports {
		if report == nil {
			continue
		}
		if report.Failed {
			failed = true
			logger.Error("Source failed",
				zap.String("source", report.Source),
				zap.Int("errors", report.Errors),
			)
			continue
		}
		logger.Info("Source finished",
			zap.String("source", report.Source),
			zap.Int("total", report.Total),
			zap.Int("new", report.New),
			zap.Int("updated", report.Updated),
			zap.Int("errors", report.Errors),
			zap.Duration("duration", report.Duration()),
		)
	}

	summary := service.Summarize(reports)
	logger.Info("Scrape complete",
		zap.Int("sources", summary.Sources),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
	)

	if failed {
		container.Shutdown()
		logger.Sync()
		os.Exit(1)
	}
}

func listSources() {
	fmt.Printf("%-10s %-26s %-8s %-9s %s\n", "KEY", "NAME", "MODE", "STATE", "SCHEDULE URL")
	for _, cfg := range adapter.Catalog() {
		state := "enabled"
		if !cfg.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-10s %-26s %-8s %-9s %s\n", cfg.Key, cfg.Name, cfg.Mode, state, cfg.ScheduleURL)
	}
}
