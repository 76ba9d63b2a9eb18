package fetch

import (
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/chromedp"

	"github.com/castboard/scraper/internal/domain"
)

// stealthInitScript runs before any page script and hides the usual
// automation markers that fingerprinting checks probe for.
const stealthInitScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
window.chrome = {runtime: {}};
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications'
		? Promise.resolve({state: Notification.permission})
		: originalQuery(parameters)
);
`

// newStealthFetcher layers evasion on the browser fetcher: a random
// real-browser user agent per process, flags that strip automation
// tells, an init script masking navigator probes, scroll simulation
// for lazy loaders, and jittered pacing.
func newStealthFetcher(cfg domain.SourceConfig, opts Options) (*browserFetcher, error) {
	return newChromeFetcher(cfg, opts, chromeSettings{
		mode:      domain.FetchModeStealth,
		userAgent: browser.Random(),
		flags: []chromedp.ExecAllocatorOption{
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-web-security", true),
			chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		},
		initScript: stealthInitScript,
		scroll:     true,
		jitter:     500 * time.Millisecond,
	})
}
