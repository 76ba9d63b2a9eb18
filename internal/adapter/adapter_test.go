package adapter

import (
	"context"
	"testing"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

// fakeFetcher serves canned markup by URL, standing in for the network.
type fakeFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", errors.NewFetchError("page not found", url, 404, false, nil)
	}
	return page, nil
}

func (f *fakeFetcher) Mode() domain.FetchMode { return domain.FetchModeStatic }

func (f *fakeFetcher) Close() error { return nil }

func mustConfig(t *testing.T, key string) domain.SourceConfig {
	t.Helper()
	cfg, ok := CatalogByKey(key)
	if !ok {
		t.Fatalf("source %q missing from catalog", key)
	}
	return cfg
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"https://marquee.example", "/profiles/ava", "https://marquee.example/profiles/ava"},
		{"https://marquee.example", "profiles/ava", "https://marquee.example/profiles/ava"},
		{"https://marquee.example", "https://other.example/x.jpg", "https://other.example/x.jpg"},
		{"https://marquee.example", "//cdn.example/x.jpg", "https://cdn.example/x.jpg"},
		{"https://marquee.example", "", ""},
		{"https://marquee.example", "  /spaced  ", "https://marquee.example/spaced"},
	}

	for _, tt := range tests {
		if got := resolveURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestCatalogHasAdapterAndSeedsForEverySource(t *testing.T) {
	registry := NewRegistry()
	seeds := LocationSeeds()

	for _, cfg := range Catalog() {
		if !registry.Known(cfg.Key) {
			t.Errorf("source %q has no registered adapter", cfg.Key)
		}
		if !cfg.Mode.IsValid() {
			t.Errorf("source %q has invalid mode %q", cfg.Key, cfg.Mode)
		}
		if cfg.RateLimitSeconds <= 0 {
			t.Errorf("source %q has no rate limit floor", cfg.Key)
		}

		rows, ok := seeds[cfg.Key]
		if !ok || len(rows) == 0 {
			t.Errorf("source %q has no location seeds", cfg.Key)
			continue
		}
		defaults := 0
		for _, row := range rows {
			if row.IsDefault {
				defaults++
			}
		}
		if defaults != 1 {
			t.Errorf("source %q has %d default locations, want exactly 1", cfg.Key, defaults)
		}
	}
}

func TestRegistryRejectsUnknownSource(t *testing.T) {
	registry := NewRegistry()
	cfg := domain.SourceConfig{Key: "ghost"}

	if _, err := registry.New(cfg, &fakeFetcher{}, nil); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}
