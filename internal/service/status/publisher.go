package status

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service/cache"
)

// States written to the status hash.
const (
	StateRunning = "running"
	StateDone    = "done"
	StateFailed  = "failed"
)

// Publisher mirrors run progress into Redis so a scrape can be watched
// without touching the database. A nil Publisher, or one built without a
// cache, is a no-op. Publish failures are logged and never affect the run.
type Publisher struct {
	cache  *cache.CacheService
	logger *zap.Logger
}

func NewPublisher(cache *cache.CacheService, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{cache: cache, logger: logger}
}

func (p *Publisher) enabled() bool {
	return p != nil && p.cache != nil
}

func statusKey(source string) string {
	return constants.StatusConfig.KeyPrefix + source
}

func reportKey(source string) string {
	return statusKey(source) + ":report"
}

// Start marks a source as running with the item total from its schedule.
func (p *Publisher) Start(ctx context.Context, source string, total int) {
	p.publish(ctx, source, map[string]any{
		"state":      StateRunning,
		"total":      strconv.Itoa(total),
		"processed":  "0",
		"errors":     "0",
		"started_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Progress refreshes the counters after an item is handled.
func (p *Publisher) Progress(ctx context.Context, source string, processed, errors int) {
	p.publish(ctx, source, map[string]any{
		"state":     StateRunning,
		"processed": strconv.Itoa(processed),
		"errors":    strconv.Itoa(errors),
	})
}

// Finish records the terminal state and stores the report as JSON alongside
// the hash.
func (p *Publisher) Finish(ctx context.Context, source string, report *domain.RunReport) {
	if !p.enabled() || report == nil {
		return
	}

	state := StateDone
	if report.Failed {
		state = StateFailed
	}
	p.publish(ctx, source, map[string]any{
		"state":        state,
		"total":        strconv.Itoa(report.Total),
		"processed":    strconv.Itoa(report.Processed()),
		"new":          strconv.Itoa(report.New),
		"updated":      strconv.Itoa(report.Updated),
		"errors":       strconv.Itoa(report.Errors),
		"completed_at": report.CompletedAt.UTC().Format(time.RFC3339),
	})

	if err := p.cache.Set(ctx, reportKey(source), report, constants.StatusConfig.TTL); err != nil {
		p.logger.Warn("Failed to store run report", zap.String("source", source), zap.Error(err))
	}
}

// Status returns the raw status hash for a source. Empty map when nothing
// has been published, nil map when publishing is disabled.
func (p *Publisher) Status(ctx context.Context, source string) (map[string]string, error) {
	if !p.enabled() {
		return nil, nil
	}
	return p.cache.HGetAll(ctx, statusKey(source))
}

// LastReport returns the stored report for a source, or nil when none.
func (p *Publisher) LastReport(ctx context.Context, source string) (*domain.RunReport, error) {
	if !p.enabled() {
		return nil, nil
	}
	var report domain.RunReport
	if err := p.cache.Get(ctx, reportKey(source), &report); err != nil {
		return nil, err
	}
	if report.Source == "" {
		return nil, nil
	}
	return &report, nil
}

func (p *Publisher) publish(ctx context.Context, source string, fields map[string]any) {
	if !p.enabled() {
		return
	}
	key := statusKey(source)
	if err := p.cache.HMSet(ctx, key, fields); err != nil {
		p.logger.Warn("Failed to publish scrape status", zap.String("source", source), zap.Error(err))
		return
	}
	if err := p.cache.Expire(ctx, key, constants.StatusConfig.TTL); err != nil {
		p.logger.Warn("Failed to refresh status TTL", zap.String("source", source), zap.Error(err))
	}
}
