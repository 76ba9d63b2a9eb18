package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/adapter"
	"github.com/castboard/scraper/internal/fetch"
)

// Probes one source's adapter against the live site and prints the
// extracted data as JSON. No database involved; useful when a site changes
// its markup and a parser needs checking in isolation.
func main() {
	sourceKey := flag.String("source", "", "source key to probe (required)")
	profileURL := flag.String("profile", "", "scrape a single profile URL instead of the schedule")
	timeout := flag.Duration("timeout", 45*time.Second, "per-fetch timeout")
	chromePath := flag.String("chrome", "", "browser binary for browser/stealth sources")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *sourceKey == "" {
		fmt.Fprintln(os.Stderr, "usage: probe -source <key> [-profile <url>]")
		os.Exit(2)
	}

	cfg, ok := adapter.CatalogByKey(*sourceKey)
	if !ok {
		logger.Fatal("Unknown source key", zap.String("source", *sourceKey))
	}

	fetcher, err := fetch.NewForSource(cfg, fetch.Options{
		Timeout:    *timeout,
		ChromePath: *chromePath,
		Headless:   true,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to build fetcher", zap.Error(err))
	}
	defer fetcher.Close()

	ad, err := adapter.NewRegistry().New(cfg, fetcher, logger)
	if err != nil {
		logger.Fatal("Failed to build adapter", zap.Error(err))
	}

	ctx := context.Background()
	if *profileURL != "" {
		fields, err := ad.ScrapeProfile(ctx, *profileURL)
		if err != nil {
			logger.Fatal("Profile scrape failed", zap.Error(err))
		}
		logger.Info("Profile scraped",
			zap.Strings("captured", fields.Captured()),
			zap.Strings("missing", fields.Missing()),
		)
		dump(fields)
		return
	}

	items, err := ad.ScrapeSchedule(ctx)
	if err != nil {
		logger.Fatal("Schedule scrape failed", zap.Error(err))
	}
	logger.Info("Schedule scraped", zap.Int("entries", len(items)))
	dump(items)
}

func dump(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
