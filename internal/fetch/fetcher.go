// Package fetch retrieves raw page markup for the site adapters. Three
// transport strategies share one contract: plain HTTP for static sites,
// a headless browser for JS-rendered sites, and a stealth browser with
// fingerprint randomization for sites that block naive automation.
package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

// Fetcher retrieves raw markup for a URL. Implementations enforce the
// source's rate limit internally: callers just call Fetch in a loop.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Mode() domain.FetchMode
	Close() error
}

// Options carries process-level fetch settings. Per-source settings
// (mode, rate limit, wait selector) come from the source config.
type Options struct {
	Timeout    time.Duration
	ChromePath string
	Headless   bool
	Logger     *zap.Logger
}

// NewForSource builds the fetcher matching the source's transport mode.
func NewForSource(cfg domain.SourceConfig, opts Options) (Fetcher, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}

	switch cfg.Mode {
	case domain.FetchModeStatic:
		return newStaticFetcher(cfg, opts)
	case domain.FetchModeBrowser:
		return newBrowserFetcher(cfg, opts)
	case domain.FetchModeStealth:
		return newStealthFetcher(cfg, opts)
	default:
		return nil, errors.NewConfigError("unknown fetch mode: "+string(cfg.Mode), "mode")
	}
}

// limiter spaces consecutive fetches at least interval apart. A non-zero
// jitter adds up to that much extra sleep, which makes stealth traffic
// look less mechanical.
type limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   time.Duration
	last     time.Time
}

func newLimiter(interval, jitter time.Duration) *limiter {
	return &limiter{interval: interval, jitter: jitter}
}

func (l *limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	delay := l.interval - time.Since(l.last)
	if l.jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(l.jitter)))
	}
	l.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	l.last = time.Now()
	l.mu.Unlock()
	return nil
}

// transientStatus reports whether an HTTP status is worth retrying.
// 403 counts: on these sites it almost always means bot detection
// rather than a real permission problem.
func transientStatus(status int) bool {
	return status >= 500 || status == 403 || status == 429 || status == 408
}

type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

var defaultRetryPolicy = retryPolicy{
	maxAttempts: constants.FetchRetryConfig.MaxAttempts,
	baseDelay:   constants.FetchRetryConfig.BaseDelay,
}

// backoff sleeps 2^attempt * base, honoring cancellation.
func (p retryPolicy) backoff(ctx context.Context, attempt int) error {
	delay := p.baseDelay << uint(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retrier is the shared attempt loop: rate limit, try once, back off
// and retry transient failures. Permanent failures and cancellation
// return immediately.
type retrier struct {
	log     *zap.Logger
	limiter *limiter
	policy  retryPolicy
}

func (r retrier) fetch(ctx context.Context, url string, once func(context.Context, string) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.policy.maxAttempts; attempt++ {
		if attempt > 0 {
			r.log.Warn("retrying fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			if err := r.policy.backoff(ctx, attempt-1); err != nil {
				return "", err
			}
		}
		if err := r.limiter.wait(ctx); err != nil {
			return "", err
		}

		markup, err := once(ctx, url)
		if err == nil {
			return markup, nil
		}
		lastErr = err
		if !errors.IsTransient(err) {
			return "", err
		}
	}
	return "", lastErr
}
