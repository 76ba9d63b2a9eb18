package matcher

import (
	"context"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/util"
)

// LocationStore is the slice of the location repository the matcher needs.
type LocationStore interface {
	ListBySource(ctx context.Context, sourceID int64) ([]domain.Location, error)
	GetDefault(ctx context.Context, sourceID int64) (*domain.Location, error)
	CreateDefault(ctx context.Context, sourceID int64, seed domain.LocationSeed) (*domain.Location, error)
}

// LocationMatcher resolves raw schedule location text ("KINGSBRIDGE",
// "Westvale, Central", "Lakewood Suites, Harbour Rd") to a catalog row of
// the source. Match never returns id 0 alongside a nil error: text that
// matches nothing lands on the source's default row, and the catch-all
// default is created on first use for sources seeded without one.
type LocationMatcher struct {
	store  LocationStore
	logger *zap.Logger

	cacheMu sync.RWMutex
	cache   map[int64][]domain.Location
}

func NewLocationMatcher(store LocationStore, logger *zap.Logger) *LocationMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationMatcher{
		store:  store,
		logger: logger,
		cache:  make(map[int64][]domain.Location),
	}
}

func (lm *LocationMatcher) Match(ctx context.Context, sourceID int64, raw string) (int64, error) {
	locations, err := lm.locations(ctx, sourceID)
	if err != nil {
		return 0, err
	}

	query := strings.ToLower(util.CollapseWhitespace(raw))

	if query != "" {
		// Strategy 1: exact match on the spellings pages use
		if loc := lm.tryExactMatch(query, locations); loc != nil {
			return loc.ID, nil
		}

		// Strategy 2: containment either way, closest row wins
		if loc := lm.tryContainmentMatch(query, locations); loc != nil {
			lm.logger.Debug("location matched by containment",
				zap.Int64("source_id", sourceID),
				zap.String("raw", raw),
				zap.String("town", loc.Town),
				zap.String("label", loc.Label))
			return loc.ID, nil
		}
	}

	// Strategy 3: the source's default row
	def, err := lm.store.GetDefault(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	if def != nil {
		if query != "" {
			lm.logger.Debug("location fell back to default",
				zap.Int64("source_id", sourceID),
				zap.String("raw", raw))
		}
		return def.ID, nil
	}

	// Strategy 4: provision the catch-all row
	created, err := lm.store.CreateDefault(ctx, sourceID, domain.LocationSeed{
		Town:      constants.DefaultTown,
		Label:     constants.DefaultLabel,
		IsDefault: true,
	})
	if err != nil {
		return 0, err
	}
	lm.invalidate(sourceID)

	lm.logger.Info("created default location",
		zap.Int64("source_id", sourceID),
		zap.Int64("location_id", created.ID))
	return created.ID, nil
}

func (lm *LocationMatcher) tryExactMatch(query string, locations []domain.Location) *domain.Location {
	for i, loc := range locations {
		for _, candidate := range locationForms(loc) {
			if query == candidate {
				return &locations[i]
			}
		}
	}
	return nil
}

// tryContainmentMatch accepts a row when the query contains one of its
// spellings or vice versa. Loose text like "Kingsbridge Incall, King &
// Main" hits on the bare town; Jaro-Winkler breaks ties between rows of
// the same town.
func (lm *LocationMatcher) tryContainmentMatch(query string, locations []domain.Location) *domain.Location {
	var (
		best      *domain.Location
		bestScore float64
	)

	for i, loc := range locations {
		canonical := strings.ToLower(loc.Town + ", " + loc.Label)

		hit := false
		for _, candidate := range append(locationForms(loc), strings.ToLower(loc.Town)) {
			if strings.Contains(query, candidate) || strings.Contains(candidate, query) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}

		score := matchr.JaroWinkler(query, canonical, false)
		if score > bestScore {
			bestScore = score
			best = &locations[i]
		}
	}

	return best
}

// locationForms are the spellings schedule pages use for a catalog row.
func locationForms(loc domain.Location) []string {
	town := strings.ToLower(loc.Town)
	label := strings.ToLower(loc.Label)
	return []string{
		town + ", " + label,
		town + " - " + label,
	}
}

func (lm *LocationMatcher) locations(ctx context.Context, sourceID int64) ([]domain.Location, error) {
	lm.cacheMu.RLock()
	cached, ok := lm.cache[sourceID]
	lm.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	list, err := lm.store.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	lm.cacheMu.Lock()
	lm.cache[sourceID] = list
	lm.cacheMu.Unlock()
	return list, nil
}

func (lm *LocationMatcher) invalidate(sourceID int64) {
	lm.cacheMu.Lock()
	delete(lm.cache, sourceID)
	lm.cacheMu.Unlock()
}
