// Package adapter holds the per-site scrapers. Each source gets one file
// that knows its markup dialect; the shared plumbing (document loading, URL
// resolution, the profile field battery) lives here and in extract.go.
package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/pkg/errors"
)

// Adapter is one source's scraper pair: the weekly schedule page and the
// per-talent profile pages. ScrapeSchedule returns a StructureError when it
// cannot find a single entry; per-entry problems only skip that entry.
// ScrapeProfile treats absent fields as valid, so it fails only on fetch or
// markup-level problems.
type Adapter interface {
	Source() domain.SourceConfig
	ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error)
	ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error)
	Close() error
}

// maxProfileImages caps how many gallery images a profile keeps.
const maxProfileImages = 10

// site is the common core embedded by every adapter.
type site struct {
	cfg     domain.SourceConfig
	fetcher fetch.Fetcher
	log     *zap.Logger
}

func newSite(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) site {
	if log == nil {
		log = zap.NewNop()
	}
	return site{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log.With(zap.String("source", cfg.Key)),
	}
}

func (s *site) Source() domain.SourceConfig {
	return s.cfg
}

// Close releases the adapter's fetcher, browser contexts included.
func (s *site) Close() error {
	return s.fetcher.Close()
}

// document fetches a page and parses it into a goquery document. Fetch
// errors pass through unchanged so callers can tell transport problems from
// markup problems.
func (s *site) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	markup, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, errors.NewStructureError("unparseable markup", pageURL, 0)
	}
	return doc, nil
}

// absoluteURL resolves an href against the source's base URL.
// Already-absolute values pass through, protocol-relative ones get https.
func (s *site) absoluteURL(href string) string {
	return resolveURL(s.cfg.BaseURL, href)
}

// imageURL resolves a gallery src against the image CDN base when the
// source has one, the page base otherwise.
func (s *site) imageURL(src string) string {
	base := s.cfg.ImageBaseURL
	if base == "" {
		base = s.cfg.BaseURL
	}
	return resolveURL(base, src)
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// slugFromURL returns the last path segment of a link, without query or
// trailing slash.
func slugFromURL(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

// titleFromSlug turns "ava-rose" into "Ava Rose" for pages that never
// print the name as text.
func titleFromSlug(slug string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return strings.TrimSpace(replaced)
}

// nameFromTitle strips the site suffix from a page title, handling both
// "Jane Doe - Site" and "Jane Doe | Site".
func nameFromTitle(title string) string {
	name := strings.SplitN(title, " - ", 2)[0]
	name = strings.SplitN(name, " | ", 2)[0]
	return strings.TrimSpace(name)
}

// logProfile emits the captured/missing diagnostic after a profile scrape.
// Which fields a site actually yields is the main signal that its markup
// drifted, so this is logged on every profile, not just failures.
func (s *site) logProfile(profileURL string, fields *domain.ProfileFields) {
	captured := fields.Captured()
	s.log.Debug("profile scraped",
		zap.String("url", profileURL),
		zap.Int("captured", len(captured)),
		zap.Strings("fields", captured),
		zap.Strings("missing", fields.Missing()))
}

// warnParseErrors flags schedule parses where a large share of candidate
// entries failed, which usually means the site changed its markup.
func (s *site) warnParseErrors(parseErrors, entries int) {
	if entries > 0 && parseErrors > entries/2 {
		s.log.Warn("high schedule parse error rate, markup may have changed",
			zap.Int("parse_errors", parseErrors),
			zap.Int("entries", entries))
	}
}

// noEntries builds the fatal zero-entry error for a schedule page.
func (s *site) noEntries(parseErrors int) error {
	return errors.NewStructureError("no schedule entries found", s.cfg.ScheduleURL, parseErrors)
}
