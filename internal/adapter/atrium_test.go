package adapter

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

const atriumRosterPage = `<html><body>
<div class="talent-grid">
<a href="/talent/lena-cole/"><img src="/uploads/thumbs/lena.jpg"><span>Lena Cole</span></a>
<a href="/talent/lena-cole/">View profile</a>
<a href="/talent/mia-park"></a>
<a href="/about">About us</a>
</div>
<a href="/talent/not-in-grid/">Not in grid</a>
</body></html>`

const atriumProfilePage = `<html><head><title>Lena Cole | Atrium Collective</title></head><body>
<main>
<div class="profile-stats">
<p class="stat-box">Age</p><p class="stat-value">24</p>
<p class="stat-box">Height</p><p class="stat-value">5’6”</p>
<p class="stat-box">Weight</p><p class="stat-value">115 lbs</p>
<p class="stat-box">Stats</p><p class="stat-value">32D-24-33</p>
<p class="stat-box">Tier</p><p class="stat-value">Diamond Collection</p>
<p class="stat-box">Body</p><p class="stat-value">Petite, all natural</p>
<p class="stat-box">Specialty</p><p class="stat-value">gfe</p>
<p class="stat-box">Hair</p><p class="stat-value">chestnut brown</p>
<p class="stat-box">Eyes</p><p class="stat-value">green</p>
<p class="stat-box">Background</p><p class="stat-value">brazilian</p>
</div>
<div class="weekly-schedule">
<div class="schedule-day"><span class="day-name">Mon</span><span class="day-hours">11am - 7pm</span><span class="day-location">Kingsbridge Incall, King &amp; Main</span></div>
<div class="schedule-day"><span class="day-name">Tue</span><span class="day-hours">Unavailable</span><span class="day-location"></span></div>
<div class="schedule-day"><span class="day-name">Mon</span><span class="day-hours">2pm - 10pm</span><span class="day-location">Westvale</span></div>
<div class="schedule-day"><span class="day-name">Fri</span><span class="day-hours">7pm – 1am</span><span class="day-location">Lakewood Suites, Harbour Rd</span></div>
</div>
<figure><img src="/uploads/2025/08/lena-1.jpg?w=600"></figure>
<img src="/uploads/2025/08/lena-2.jpg">
<img src="/uploads/site/logo.png">
<img src="/static/banner.jpg">
</main>
</body></html>`

func TestAtriumScheduleCollectsRosterWithoutSlots(t *testing.T) {
	cfg := mustConfig(t, "atrium")
	fetcher := &fakeFetcher{pages: map[string]string{cfg.ScheduleURL: atriumRosterPage}}
	atrium := NewAtrium(cfg, fetcher, zap.NewNop())

	items, err := atrium.ScrapeSchedule(context.Background())
	if err != nil {
		t.Fatalf("ScrapeSchedule: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	if items[0].Name != "Lena Cole" || items[0].ProfileURL != "https://atrium.example/talent/lena-cole/" {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].Name != "Mia Park" || items[1].ProfileURL != "https://atrium.example/talent/mia-park" {
		t.Errorf("second item = %+v", items[1])
	}

	for _, item := range items {
		if len(item.Slots) != 0 {
			t.Errorf("%s: roster items carry no slots, got %+v", item.Name, item.Slots)
		}
		if item.Tier != "" {
			t.Errorf("%s: tier comes from the profile, got %q", item.Name, item.Tier)
		}
	}
}

func TestAtriumScheduleEmptyGridFails(t *testing.T) {
	cfg := mustConfig(t, "atrium")
	fetcher := &fakeFetcher{pages: map[string]string{cfg.ScheduleURL: `<div class="talent-grid"></div>`}}
	atrium := NewAtrium(cfg, fetcher, zap.NewNop())

	if _, err := atrium.ScrapeSchedule(context.Background()); !errors.IsStructureError(err) {
		t.Fatalf("want structure error, got %v", err)
	}
}

func TestAtriumProfile(t *testing.T) {
	cfg := mustConfig(t, "atrium")
	profileURL := "https://atrium.example/talent/lena-cole/"
	fetcher := &fakeFetcher{pages: map[string]string{profileURL: atriumProfilePage}}
	atrium := NewAtrium(cfg, fetcher, zap.NewNop())

	fields, err := atrium.ScrapeProfile(context.Background(), profileURL)
	if err != nil {
		t.Fatalf("ScrapeProfile: %v", err)
	}

	if fields.Name != "Lena Cole" {
		t.Errorf("Name = %q", fields.Name)
	}
	if fields.Age != 24 {
		t.Errorf("Age = %d, want 24", fields.Age)
	}
	if fields.Height != "5'6" {
		t.Errorf("Height = %q, want 5'6", fields.Height)
	}
	if fields.Weight != "52 kg" {
		t.Errorf("Weight = %q, want 52 kg", fields.Weight)
	}
	if fields.Measurements != "32D-24-33" {
		t.Errorf("Measurements = %q", fields.Measurements)
	}
	if fields.Bust != "32 D" {
		t.Errorf("Bust = %q, want 32 D", fields.Bust)
	}
	if fields.BustType != "Natural" {
		t.Errorf("BustType = %q, want Natural", fields.BustType)
	}
	if fields.Tier != "Diamond" {
		t.Errorf("Tier = %q, want Diamond", fields.Tier)
	}
	if fields.ServiceType != "GFE" {
		t.Errorf("ServiceType = %q, want GFE", fields.ServiceType)
	}
	if fields.HairColor != "Chestnut Brown" {
		t.Errorf("HairColor = %q", fields.HairColor)
	}
	if fields.EyeColor != "Green" {
		t.Errorf("EyeColor = %q", fields.EyeColor)
	}
	if fields.Nationality != "Brazilian" {
		t.Errorf("Nationality = %q", fields.Nationality)
	}

	wantSlots := []domain.RawSlot{
		{Day: "Monday", Location: "Kingsbridge, King & Main", Start: "11AM", End: "7PM"},
		{Day: "Friday", Location: "Lakewood, Harbour Rd", Start: "7PM", End: "1AM"},
	}
	if len(fields.Slots) != len(wantSlots) {
		t.Fatalf("got %d slots, want %d: %+v", len(fields.Slots), len(wantSlots), fields.Slots)
	}
	for i, slot := range fields.Slots {
		if slot != wantSlots[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slot, wantSlots[i])
		}
	}

	wantImages := []string{
		"https://atrium.example/uploads/2025/08/lena-1.jpg",
		"https://atrium.example/uploads/2025/08/lena-2.jpg",
	}
	if len(fields.Images) != len(wantImages) {
		t.Fatalf("got %d images, want %d: %v", len(fields.Images), len(wantImages), fields.Images)
	}
	for i, img := range fields.Images {
		if img != wantImages[i] {
			t.Errorf("image %d = %q, want %q", i, img, wantImages[i])
		}
	}

	if len(fields.Tags) != 1 || fields.Tags[0] != "PETITE" {
		t.Errorf("Tags = %v, want [PETITE]", fields.Tags)
	}
}

func TestAtriumLocation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Kingsbridge Incall, King & Main", "Kingsbridge, King & Main"},
		{"Lakewood Suites, Harbour Rd", "Lakewood, Harbour Rd"},
		{"westvale", "Westvale, unknown"},
		{"Private residence, Oak Ave", "Unknown, Oak Ave"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := atriumLocation(tt.in); got != tt.want {
			t.Errorf("atriumLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
