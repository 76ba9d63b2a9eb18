package status

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
)

// Every publish path must be a no-op when Redis is not configured. The
// runner calls these unconditionally.
func TestPublisherDisabledIsNoOp(t *testing.T) {
	ctx := context.Background()

	var nilPublisher *Publisher
	nilPublisher.Start(ctx, "marquee", 12)
	nilPublisher.Progress(ctx, "marquee", 3, 1)
	nilPublisher.Finish(ctx, "marquee", domain.NewRunReport("marquee"))

	p := NewPublisher(nil, zap.NewNop())
	p.Start(ctx, "marquee", 12)
	p.Progress(ctx, "marquee", 3, 1)

	report := domain.NewRunReport("marquee")
	report.Failed = true
	p.Finish(ctx, "marquee", report)
	p.Finish(ctx, "marquee", nil)

	if got, err := p.LastReport(ctx, "marquee"); err != nil || got != nil {
		t.Fatalf("LastReport() = (%v, %v), want (nil, nil) when disabled", got, err)
	}
	if got, err := p.Status(ctx, "marquee"); err != nil || got != nil {
		t.Fatalf("Status() = (%v, %v), want (nil, nil) when disabled", got, err)
	}
}

func TestStatusKeys(t *testing.T) {
	if got := statusKey("prism"); got != "castboard:scrape:status:prism" {
		t.Errorf("statusKey(prism) = %q", got)
	}
	if got := reportKey("prism"); got != "castboard:scrape:status:prism:report" {
		t.Errorf("reportKey(prism) = %q", got)
	}
}
