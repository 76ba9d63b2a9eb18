package fetch

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

const (
	waitSelectorTimeout = 10 * time.Second
	settleDelay         = 2 * time.Second
)

// chromeSettings is the per-mode tuning applied on top of the shared
// headless-browser plumbing.
type chromeSettings struct {
	mode       domain.FetchMode
	userAgent  string
	flags      []chromedp.ExecAllocatorOption
	initScript string
	scroll     bool
	jitter     time.Duration
}

// browserFetcher drives one headless Chrome per source. Every Fetch
// opens a fresh tab so sites cannot correlate state across pages;
// cookies still persist at the browser level for the run.
type browserFetcher struct {
	retrier
	mode         domain.FetchMode
	browserCtx   context.Context
	cancelTab    context.CancelFunc
	cancelAlloc  context.CancelFunc
	timeout      time.Duration
	waitSelector string
	initScript   string
	scroll       bool
}

func newBrowserFetcher(cfg domain.SourceConfig, opts Options) (*browserFetcher, error) {
	return newChromeFetcher(cfg, opts, chromeSettings{
		mode:      domain.FetchModeBrowser,
		userAgent: desktopUserAgent,
	})
}

func newChromeFetcher(cfg domain.SourceConfig, opts Options, settings chromeSettings) (*browserFetcher, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(settings.userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocOpts = append(allocOpts, settings.flags...)
	if bin := findChromeBinary(opts.ChromePath); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return &browserFetcher{
		retrier: retrier{
			log: opts.Logger.With(
				zap.String("source", cfg.Key),
				zap.String("mode", settings.mode.String())),
			limiter: newLimiter(cfg.RateLimit(), settings.jitter),
			policy:  defaultRetryPolicy,
		},
		mode:         settings.mode,
		browserCtx:   browserCtx,
		cancelTab:    cancelTab,
		cancelAlloc:  cancelAlloc,
		timeout:      opts.Timeout,
		waitSelector: cfg.WaitSelector,
		initScript:   settings.initScript,
		scroll:       settings.scroll,
	}, nil
}

func (f *browserFetcher) Mode() domain.FetchMode {
	return f.mode
}

func (f *browserFetcher) Close() error {
	f.cancelTab()
	f.cancelAlloc()
	return nil
}

func (f *browserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.retrier.fetch(ctx, url, f.fetchOnce)
}

func (f *browserFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	// Caller cancellation has to reach the tab, whose context chain
	// runs through the allocator rather than ctx.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if f.initScript != "" {
		err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(f.initScript).Do(ctx)
			return err
		}))
		if err != nil {
			return "", f.classify(ctx, url, "install init script", err)
		}
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return "", f.classify(ctx, url, "navigate", err)
	}
	if resp != nil && resp.Status >= 400 {
		status := int(resp.Status)
		return "", errors.NewFetchError("unexpected status", url, status, transientStatus(status), nil)
	}

	if f.waitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, waitSelectorTimeout)
		if err := chromedp.Run(waitCtx, chromedp.WaitReady(f.waitSelector, chromedp.ByQuery)); err != nil {
			f.log.Warn("wait selector not ready, continuing",
				zap.String("url", url),
				zap.String("selector", f.waitSelector))
		}
		cancelWait()
	}

	actions := []chromedp.Action{chromedp.Sleep(settleDelay)}
	if f.scroll {
		// Scrolling fires the lazy loaders these sites use for images
		// and below-the-fold schedule rows.
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 3)`, nil),
			chromedp.Sleep(500*time.Millisecond),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(300*time.Millisecond),
		)
	}

	var markup string
	actions = append(actions, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", f.classify(ctx, url, "extract markup", err)
	}
	return markup, nil
}

// classify maps a chromedp failure to the fetch error contract: caller
// cancellation passes through, everything else (timeouts, crashed tabs,
// connection failures) is transient.
func (f *browserFetcher) classify(ctx context.Context, url, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.NewFetchError(op+" failed", url, 0, true, err)
}
