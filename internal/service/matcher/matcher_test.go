package matcher

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/pkg/errors"
)

type fakeLocationStore struct {
	locations map[int64][]domain.Location
	defaults  map[int64]*domain.Location
	created   []domain.LocationSeed
	listCalls int
	listErr   error
}

func (f *fakeLocationStore) ListBySource(_ context.Context, sourceID int64) ([]domain.Location, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.locations[sourceID], nil
}

func (f *fakeLocationStore) GetDefault(_ context.Context, sourceID int64) (*domain.Location, error) {
	if f.defaults == nil {
		return nil, nil
	}
	return f.defaults[sourceID], nil
}

func (f *fakeLocationStore) CreateDefault(_ context.Context, sourceID int64, seed domain.LocationSeed) (*domain.Location, error) {
	f.created = append(f.created, seed)
	return &domain.Location{
		ID:        900 + int64(len(f.created)),
		SourceID:  sourceID,
		Town:      seed.Town,
		Label:     seed.Label,
		IsDefault: seed.IsDefault,
	}, nil
}

func seededStore() *fakeLocationStore {
	rows := []domain.Location{
		{ID: 1, SourceID: 1, Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
		{ID: 2, SourceID: 1, Town: "Kingsbridge", Label: "Uptown"},
		{ID: 3, SourceID: 1, Town: "Westvale", Label: "Central"},
	}
	return &fakeLocationStore{
		locations: map[int64][]domain.Location{1: rows},
		defaults:  map[int64]*domain.Location{1: &rows[0]},
	}
}

func TestMatchStrategies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"exact comma form", "Kingsbridge, Uptown", 2},
		{"exact dash form case-insensitive", "westvale - central", 3},
		{"town containment", "Westvale Central Suites", 3},
		{"closest row wins among same town", "kingsbridge downtown", 1},
		{"unmatched text falls to default", "Private Residence, Oak Ave", 1},
		{"empty text falls to default", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm := NewLocationMatcher(seededStore(), zap.NewNop())
			got, err := lm.Match(context.Background(), 1, tt.raw)
			if err != nil {
				t.Fatalf("Match(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMatchCreatesDefaultForUnseededSource(t *testing.T) {
	store := &fakeLocationStore{}
	lm := NewLocationMatcher(store, zap.NewNop())

	id, err := lm.Match(context.Background(), 7, "anywhere")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if id == 0 {
		t.Fatal("Match returned id 0 without an error")
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(store.created))
	}
	seed := store.created[0]
	if seed.Town != "Unknown" || seed.Label != "unknown" || !seed.IsDefault {
		t.Errorf("created seed = %+v", seed)
	}
}

func TestMatchCachesLocationList(t *testing.T) {
	store := seededStore()
	lm := NewLocationMatcher(store, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := lm.Match(context.Background(), 1, "Kingsbridge, Uptown"); err != nil {
			t.Fatalf("Match: %v", err)
		}
	}

	if store.listCalls != 1 {
		t.Errorf("ListBySource called %d times, want 1", store.listCalls)
	}
}

func TestMatchPropagatesStoreErrors(t *testing.T) {
	store := &fakeLocationStore{
		listErr: errors.NewStoreError("connection lost", "locations", "list", nil),
	}
	lm := NewLocationMatcher(store, zap.NewNop())

	if _, err := lm.Match(context.Background(), 1, "Kingsbridge, Uptown"); err == nil {
		t.Fatal("want error from store, got nil")
	}
}
