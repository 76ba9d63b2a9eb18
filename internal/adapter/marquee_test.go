package adapter

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/castboard/scraper/pkg/errors"
)

const marqueeSchedulePage = `<html><body><div class="content">
<h5>Kingsbridge INCALL</h5>
<h6>MONDAY</h6>
<a href="/profiles/ava-rose">Ava Rose 7PM-11PM</a>
<a href="/profiles/bella">*VIP* Bella 3;30PM-7PM</a>
<a href="http://partners.example/banner">Our Partner Site</a>
<a href="/about-us">About Us</a>
<h6>TUESDAY</h6>
<a href="/profiles/cleo">Cleo 11AM-LATE</a>
<a href="/credits">Website Design by Sitecraft</a>
</div></body></html>`

func TestMarqueeScheduleParsesSections(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	fetcher := &fakeFetcher{pages: map[string]string{cfg.ScheduleURL: marqueeSchedulePage}}
	marquee := NewMarquee(cfg, fetcher, zap.NewNop())

	items, err := marquee.ScrapeSchedule(context.Background())
	if err != nil {
		t.Fatalf("ScrapeSchedule: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	ava := items[0]
	if ava.Name != "Ava Rose" {
		t.Errorf("name = %q, want Ava Rose", ava.Name)
	}
	if ava.ProfileURL != "https://marquee.example/profiles/ava-rose" {
		t.Errorf("profile url = %q", ava.ProfileURL)
	}
	if len(ava.Slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(ava.Slots))
	}
	slot := ava.Slots[0]
	if slot.Day != "Monday" || slot.Location != "Kingsbridge" {
		t.Errorf("slot = %+v, want Monday / Kingsbridge", slot)
	}
	if slot.Start != "7PM" || slot.End != "11PM" {
		t.Errorf("times = %q-%q, want 7PM-11PM", slot.Start, slot.End)
	}

	bella := items[1]
	if bella.Name != "Bella" {
		t.Errorf("name = %q, want Bella", bella.Name)
	}
	if bella.Tier != "VIP" {
		t.Errorf("tier = %q, want VIP", bella.Tier)
	}
	if bella.Slots[0].Start != "3:30PM" {
		t.Errorf("start = %q, want 3:30PM", bella.Slots[0].Start)
	}

	cleo := items[2]
	if cleo.Slots[0].Day != "Tuesday" {
		t.Errorf("day = %q, want Tuesday", cleo.Slots[0].Day)
	}
	if cleo.Slots[0].End != "LATE" {
		t.Errorf("end = %q, want LATE", cleo.Slots[0].End)
	}
}

func TestMarqueeScheduleToleratesMissingHeadings(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	page := `<html><body><div class="content">
<a href="/profiles/dani">Dani 3PM</a>
</div></body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{cfg.ScheduleURL: page}}
	marquee := NewMarquee(cfg, fetcher, zap.NewNop())

	items, err := marquee.ScrapeSchedule(context.Background())
	if err != nil {
		t.Fatalf("ScrapeSchedule: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	slot := items[0].Slots[0]
	if slot.Day != "" || slot.Location != "" {
		t.Errorf("slot = %+v, want empty day and location", slot)
	}
	if slot.Start != "3PM" || slot.End != "3PM" {
		t.Errorf("times = %q-%q, want 3PM-3PM", slot.Start, slot.End)
	}
}

func TestMarqueeScheduleZeroEntriesIsStructureError(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	page := `<html><body><div class="content">
<a href="/about-us">About Us</a>
<a href="http://partners.example">Partner</a>
</div></body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{cfg.ScheduleURL: page}}
	marquee := NewMarquee(cfg, fetcher, zap.NewNop())

	_, err := marquee.ScrapeSchedule(context.Background())
	if err == nil {
		t.Fatal("expected error for empty schedule")
	}
	if !errors.IsStructureError(err) {
		t.Errorf("error = %v, want StructureError", err)
	}
}

func TestMarqueeScheduleFetchErrorPassesThrough(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	fetchErr := errors.NewFetchError("boom", cfg.ScheduleURL, 503, true, nil)
	marquee := NewMarquee(cfg, &fakeFetcher{err: fetchErr}, zap.NewNop())

	_, err := marquee.ScrapeSchedule(context.Background())
	if !errors.IsFetchError(err) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if !errors.IsTransient(err) {
		t.Errorf("expected transient error, got %v", err)
	}
}

const marqueeProfilePage = `<html><body><div class="content">
<p>Age: 25 Nationality: Canadian Height: 5'7 Weight: 130 lbs</p>
<p>Hair: Black Eyes: Brown Bust: 34DD (Natural)</p>
<p>Join us in the VIP lounge.</p>
<p>INCALL RATES ELITE 30 mins</p>
<img class="gallery-img" src="/img/ava-1.jpg">
<img class="gallery-img" src="/img/ava-2.jpg">
<img class="gallery-img" src="/img/ava-1.jpg">
</div></body></html>`

func TestMarqueeProfile(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	url := "https://marquee.example/profiles/ava-rose"
	fetcher := &fakeFetcher{pages: map[string]string{url: marqueeProfilePage}}
	marquee := NewMarquee(cfg, fetcher, zap.NewNop())

	fields, err := marquee.ScrapeProfile(context.Background(), url)
	if err != nil {
		t.Fatalf("ScrapeProfile: %v", err)
	}

	if fields.Age != 25 {
		t.Errorf("age = %d, want 25", fields.Age)
	}
	if fields.Weight != "59 kg" {
		t.Errorf("weight = %q, want 59 kg", fields.Weight)
	}
	if fields.Bust != "34 DD" || fields.BustType != "Natural" {
		t.Errorf("bust = %q / %q", fields.Bust, fields.BustType)
	}
	// The rate table wins over the "VIP lounge" mention in running text.
	if fields.Tier != "Elite" {
		t.Errorf("tier = %q, want Elite", fields.Tier)
	}
	wantImages := []string{
		"https://marquee.example/img/ava-1.jpg",
		"https://marquee.example/img/ava-2.jpg",
	}
	if len(fields.Images) != 2 || fields.Images[0] != wantImages[0] || fields.Images[1] != wantImages[1] {
		t.Errorf("images = %v, want %v", fields.Images, wantImages)
	}
}

func TestMarqueeProfileAbsenceIsValid(t *testing.T) {
	cfg := mustConfig(t, "marquee")
	url := "https://marquee.example/profiles/bare"
	page := `<html><body><div class="content"><p>Coming soon.</p></div></body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{url: page}}
	marquee := NewMarquee(cfg, fetcher, zap.NewNop())

	fields, err := marquee.ScrapeProfile(context.Background(), url)
	if err != nil {
		t.Fatalf("ScrapeProfile: %v", err)
	}
	if captured := fields.Captured(); len(captured) != 0 {
		t.Errorf("captured = %v, want none", captured)
	}
	if missing := fields.Missing(); len(missing) != 14 {
		t.Errorf("missing %d fields, want all 14", len(missing))
	}
}
