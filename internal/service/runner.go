package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/adapter"
	"github.com/castboard/scraper/internal/config"
	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service/status"
	"github.com/castboard/scraper/internal/util"
)

// AdapterFactory builds a ready adapter for one source. The app wires this
// to the registry plus a fetcher matching the source's transport mode; the
// runner closes the adapter when the run ends.
type AdapterFactory interface {
	New(cfg domain.SourceConfig) (adapter.Adapter, error)
}

// SourceStore is the slice of the source repository the runner needs.
type SourceStore interface {
	GetOrCreate(ctx context.Context, cfg domain.SourceConfig) (*domain.Source, error)
	UpdateLastScraped(ctx context.Context, sourceID int64, at time.Time) error
}

// ListingStore reconciles one scraped listing and its slots. Reports
// whether the listing was new.
type ListingStore interface {
	Reconcile(ctx context.Context, listing *domain.Listing, slots []domain.RawSlot) (bool, error)
}

// Runner orchestrates scrape runs: schedule page first, then every
// listing's profile, reconciling as it goes. Items within a source are
// always sequential; only sources run in parallel.
type Runner struct {
	factory  AdapterFactory
	sources  SourceStore
	listings ListingStore
	status   *status.Publisher
	cfg      config.ScraperConfig
	logger   *zap.Logger
}

func NewRunner(factory AdapterFactory, sources SourceStore, listings ListingStore, publisher *status.Publisher, cfg config.ScraperConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		factory:  factory,
		sources:  sources,
		listings: listings,
		status:   publisher,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunSource scrapes one source end to end. Only a schedule-level failure is
// fatal; per-item errors are recorded in the report and the run continues.
// The report is never nil, even on fatal errors.
func (r *Runner) RunSource(ctx context.Context, key string) (*domain.RunReport, error) {
	report := domain.NewRunReport(key)
	log := r.logger.With(zap.String("source", key))

	cfg, ok := adapter.CatalogByKey(key)
	if !ok {
		return r.fail(ctx, report, log, fmt.Errorf("unknown source: %s", key))
	}

	src, err := r.sources.GetOrCreate(ctx, cfg)
	if err != nil {
		return r.fail(ctx, report, log, err)
	}
	if !src.Enabled {
		log.Info("Source disabled, skipping")
		report.CompletedAt = time.Now().UTC()
		return report, nil
	}

	ad, err := r.factory.New(cfg)
	if err != nil {
		return r.fail(ctx, report, log, err)
	}
	defer func() {
		if err := ad.Close(); err != nil {
			log.Warn("Failed to close adapter", zap.Error(err))
		}
	}()

	log.Info("Fetching schedule", zap.String("url", cfg.ScheduleURL))
	entries, err := ad.ScrapeSchedule(ctx)
	if err != nil {
		return r.fail(ctx, report, log, err)
	}

	items := dedupeByProfileURL(entries)
	report.Total = len(items)
	log.Info("Schedule fetched",
		zap.Int("entries", len(entries)),
		zap.Int("listings", len(items)),
	)
	r.status.Start(ctx, key, report.Total)

	cancelled := false
	for i, item := range items {
		if ctx.Err() != nil {
			cancelled = true
			log.Warn("Run cancelled", zap.Int("processed", i), zap.Int("total", report.Total))
			break
		}

		created, err := r.processItem(ctx, src, ad, item)
		if err != nil {
			identifier := item.Name
			if identifier == "" {
				identifier = item.ProfileURL
			}
			report.AddError(identifier, err.Error())
			log.Warn("Listing failed", zap.String("listing", identifier), zap.Error(err))
		} else if created {
			report.New++
		} else {
			report.Updated++
		}

		processed := i + 1
		if processed%constants.RunnerConfig.ProgressLogInterval == 0 || processed == len(items) {
			log.Info("Progress",
				zap.Int("processed", processed),
				zap.Int("total", report.Total),
				zap.Int("errors", report.Errors),
			)
		}
		r.status.Progress(ctx, key, report.Processed(), report.Errors)
	}

	report.CompletedAt = time.Now().UTC()
	if cancelled {
		report.Failed = true
		r.status.Finish(context.WithoutCancel(ctx), key, report)
		return report, ctx.Err()
	}

	if err := r.sources.UpdateLastScraped(ctx, src.ID, report.CompletedAt); err != nil {
		log.Warn("Failed to stamp last_scraped", zap.Error(err))
	}

	log.Info("Run finished",
		zap.Int("total", report.Total),
		zap.Int("new", report.New),
		zap.Int("updated", report.Updated),
		zap.Int("errors", report.Errors),
		zap.Duration("duration", report.Duration()),
	)
	r.status.Finish(ctx, key, report)
	return report, nil
}

// RunAll scrapes every enabled source, sequentially or in a goroutine pool
// capped by config. A failure or panic inside one source never crosses into
// another; it becomes that source's failed report.
func (r *Runner) RunAll(ctx context.Context, parallel bool) []*domain.RunReport {
	var keys []string
	for _, cfg := range adapter.Catalog() {
		if !cfg.Enabled || r.sourceDisabled(cfg.Key) {
			continue
		}
		keys = append(keys, cfg.Key)
	}

	reports := make([]*domain.RunReport, len(keys))
	if parallel && len(keys) > 1 {
		p := pool.New().WithMaxGoroutines(r.parallelism())
		for i, key := range keys {
			i, key := i, key
			p.Go(func() {
				reports[i] = r.runGuarded(ctx, key)
			})
		}
		p.Wait()
	} else {
		for i, key := range keys {
			reports[i] = r.runGuarded(ctx, key)
		}
	}
	return reports
}

// runGuarded turns a panic inside one source's run into that source's
// failed report.
func (r *Runner) runGuarded(ctx context.Context, key string) (report *domain.RunReport) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Run panicked", zap.String("source", key), zap.Any("panic", rec))
			if report == nil {
				report = domain.NewRunReport(key)
			}
			report.Failed = true
			report.AddError(key, fmt.Sprintf("panic: %v", rec))
			report.CompletedAt = time.Now().UTC()
		}
	}()

	report, err := r.RunSource(ctx, key)
	if err != nil {
		r.logger.Error("Run failed", zap.String("source", key), zap.Error(err))
	}
	return report
}

func (r *Runner) processItem(ctx context.Context, src *domain.Source, ad adapter.Adapter, item domain.ScheduleItem) (bool, error) {
	fields, err := ad.ScrapeProfile(ctx, item.ProfileURL)
	if err != nil {
		return false, err
	}

	// The profile page wins over the schedule tile for name and slots; the
	// schedule tier fills in when the profile had none.
	name := item.Name
	if fields.Name != "" {
		name = fields.Name
	}
	if name == "" {
		return false, fmt.Errorf("listing without a name: %s", item.ProfileURL)
	}
	slots := item.Slots
	if len(fields.Slots) > 0 {
		slots = fields.Slots
	}
	if fields.Tier == "" {
		fields.Tier = item.Tier
	}

	listing := &domain.Listing{
		SourceID:   src.ID,
		Name:       name,
		ProfileURL: item.ProfileURL,
		Fields:     fields,
	}
	return r.listings.Reconcile(ctx, listing, slots)
}

func (r *Runner) fail(ctx context.Context, report *domain.RunReport, log *zap.Logger, err error) (*domain.RunReport, error) {
	report.Failed = true
	report.CompletedAt = time.Now().UTC()
	log.Error("Run failed", zap.Error(err))
	r.status.Finish(ctx, report.Source, report)
	return report, err
}

func (r *Runner) sourceDisabled(key string) bool {
	return util.Contains(r.cfg.DisabledSources, key)
}

func (r *Runner) parallelism() int {
	if r.cfg.Parallelism < 1 {
		return 1
	}
	return r.cfg.Parallelism
}

// dedupeByProfileURL collapses repeat schedule entries for the same profile
// into one item, first occurrence order, slots appended. Day-sectioned
// schedule pages list a performer once per working day.
func dedupeByProfileURL(entries []domain.ScheduleItem) []domain.ScheduleItem {
	if !constants.RunnerConfig.DedupeByProfileURL {
		return entries
	}

	index := make(map[string]int, len(entries))
	items := make([]domain.ScheduleItem, 0, len(entries))
	for _, entry := range entries {
		at, seen := index[entry.ProfileURL]
		if seen {
			items[at].Slots = append(items[at].Slots, entry.Slots...)
			if items[at].Tier == "" {
				items[at].Tier = entry.Tier
			}
			continue
		}
		index[entry.ProfileURL] = len(items)
		items = append(items, entry)
	}
	return items
}

// Summary aggregates a batch of run reports for the final log line.
type Summary struct {
	Sources int
	Failed  int
	Total   int
	New     int
	Updated int
	Errors  int
}

func Summarize(reports []*domain.RunReport) Summary {
	var s Summary
	for _, report := range reports {
		if report == nil {
			continue
		}
		s.Sources++
		if report.Failed {
			s.Failed++
		}
		s.Total += report.Total
		s.New += report.New
		s.Updated += report.Updated
		s.Errors += report.Errors
	}
	return s
}
