package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

func TestTransientStatus(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{500, true},
		{502, true},
		{503, true},
		{429, true},
		{403, true},
		{408, true},
		{400, false},
		{401, false},
		{404, false},
		{410, false},
	}
	for _, c := range cases {
		if got := transientStatus(c.status); got != c.want {
			t.Errorf("transientStatus(%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestLimiterSpacesRequests(t *testing.T) {
	lim := newLimiter(50*time.Millisecond, 0)
	ctx := context.Background()

	if err := lim.wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	start := time.Now()
	if err := lim.wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second wait returned after %v, want at least the 50ms interval", elapsed)
	}
}

func TestLimiterHonorsCancellation(t *testing.T) {
	lim := newLimiter(time.Hour, 0)
	if err := lim.wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := lim.wait(ctx); err != context.Canceled {
		t.Fatalf("wait on canceled context = %v, want context.Canceled", err)
	}
}

func TestLimiterJitterStaysBounded(t *testing.T) {
	lim := newLimiter(0, 20*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := lim.wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("three jittered waits took %v, want well under 500ms", elapsed)
	}
}

func testRetrier() retrier {
	return retrier{
		log:     zap.NewNop(),
		limiter: newLimiter(0, 0),
		policy:  retryPolicy{maxAttempts: 3, baseDelay: time.Millisecond},
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := testRetrier()
	calls := 0
	_, err := r.fetch(context.Background(), "http://example.test", func(context.Context, string) (string, error) {
		calls++
		return "", errors.NewFetchError("unexpected status", "http://example.test", 404, false, nil)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("attempted %d times, want 1 for a permanent error", calls)
	}
}

func TestRetrierRetriesTransientErrors(t *testing.T) {
	r := testRetrier()
	calls := 0
	markup, err := r.fetch(context.Background(), "http://example.test", func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.NewFetchError("unexpected status", "http://example.test", 503, true, nil)
		}
		return "<html>ok</html>", nil
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if markup != "<html>ok</html>" {
		t.Errorf("markup = %q", markup)
	}
	if calls != 3 {
		t.Errorf("attempted %d times, want 3", calls)
	}
}

func TestRetrierGivesUpAfterMaxAttempts(t *testing.T) {
	r := testRetrier()
	calls := 0
	_, err := r.fetch(context.Background(), "http://example.test", func(context.Context, string) (string, error) {
		calls++
		return "", errors.NewFetchError("unexpected status", "http://example.test", 503, true, nil)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("attempted %d times, want 3", calls)
	}
	if !errors.IsTransient(err) {
		t.Error("final error should keep its transient classification")
	}
}

func newTestStaticFetcher(t *testing.T) *staticFetcher {
	t.Helper()
	f, err := newStaticFetcher(
		domain.SourceConfig{Key: "test", ScheduleURL: "http://example.test"},
		Options{Timeout: 5 * time.Second, Logger: zap.NewNop()},
	)
	if err != nil {
		t.Fatalf("newStaticFetcher: %v", err)
	}
	return f
}

func TestStaticFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>schedule</body></html>"))
	}))
	defer srv.Close()

	f := newTestStaticFetcher(t)
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(body, "schedule") {
		t.Errorf("body %q missing expected content", body)
	}
}

func TestStaticFetchAcceptsFullPageOnErrorStatus(t *testing.T) {
	page := "<html><body>" + strings.Repeat("listing ", 300) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := newTestStaticFetcher(t)
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != page {
		t.Error("expected the full body despite the 404 status")
	}
}

func TestStaticFetchRejectsShortErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestStaticFetcher(t)
	_, err := f.fetchOnce(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for a short 404 body")
	}
	if errors.IsTransient(err) {
		t.Error("404 with a block page should be permanent")
	}
}

func TestStaticFetchServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestStaticFetcher(t)
	_, err := f.fetchOnce(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !errors.IsTransient(err) {
		t.Error("503 should be transient")
	}
}

func TestNewForSourceSelectsMode(t *testing.T) {
	for _, mode := range []domain.FetchMode{
		domain.FetchModeStatic,
		domain.FetchModeBrowser,
		domain.FetchModeStealth,
	} {
		cfg := domain.SourceConfig{Key: "test", Mode: mode, RateLimitSeconds: 1}
		f, err := NewForSource(cfg, Options{Logger: zap.NewNop()})
		if err != nil {
			t.Fatalf("NewForSource(%s): %v", mode, err)
		}
		if f.Mode() != mode {
			t.Errorf("Mode() = %s, want %s", f.Mode(), mode)
		}
		f.Close()
	}
}

func TestNewForSourceRejectsUnknownMode(t *testing.T) {
	_, err := NewForSource(domain.SourceConfig{Key: "test", Mode: "carrier"}, Options{Logger: zap.NewNop()})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	if got := findChromeBinary("/custom/chrome"); got != "/custom/chrome" {
		t.Errorf("findChromeBinary = %q, want the configured path", got)
	}
}

func TestFindChromeBinaryEnvOverride(t *testing.T) {
	t.Setenv("CHROME_BIN", "/env/chrome")
	if got := findChromeBinary(""); got != "/env/chrome" {
		t.Errorf("findChromeBinary = %q, want CHROME_BIN value", got)
	}
}
