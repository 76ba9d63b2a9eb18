package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service/database"
	"github.com/castboard/scraper/pkg/errors"
)

// LocationRepository persists the per-source location rows that schedule
// entries point at.
type LocationRepository struct {
	db     *database.PostgresService
	logger *zap.Logger
}

func NewLocationRepository(db *database.PostgresService, logger *zap.Logger) *LocationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationRepository{db: db, logger: logger}
}

// ListBySource returns a source's locations ordered by id. Rows that fail to
// scan are logged and skipped.
func (r *LocationRepository) ListBySource(ctx context.Context, sourceID int64) ([]domain.Location, error) {
	rows, err := r.db.GetDB().QueryContext(ctx,
		`SELECT id, source_id, town, label, is_default FROM locations WHERE source_id = $1 ORDER BY id`,
		sourceID)
	if err != nil {
		return nil, errors.NewStoreError("failed to list locations", "locations", "list", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.SourceID, &loc.Town, &loc.Label, &loc.IsDefault); err != nil {
			r.logger.Warn("Failed to scan location row", zap.Error(err))
			continue
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to read location rows", "locations", "list", err)
	}
	return locations, nil
}

// GetDefault returns the source's default location, or nil when none exists.
func (r *LocationRepository) GetDefault(ctx context.Context, sourceID int64) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.GetDB().QueryRowContext(ctx,
		`SELECT id, source_id, town, label, is_default FROM locations
		 WHERE source_id = $1 AND is_default ORDER BY id LIMIT 1`,
		sourceID).Scan(&loc.ID, &loc.SourceID, &loc.Town, &loc.Label, &loc.IsDefault)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to get default location", "locations", "get", err)
	}
	return &loc, nil
}

// Create inserts a location, or returns the existing row when the
// (source, town, label) triple is already present.
func (r *LocationRepository) Create(ctx context.Context, sourceID int64, seed domain.LocationSeed) (*domain.Location, error) {
	const query = `
		INSERT INTO locations (source_id, town, label, is_default)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_id, town, label) DO UPDATE SET is_default = EXCLUDED.is_default
		RETURNING id, source_id, town, label, is_default`

	var loc domain.Location
	err := r.db.GetDB().QueryRowContext(ctx, query, sourceID, seed.Town, seed.Label, seed.IsDefault).
		Scan(&loc.ID, &loc.SourceID, &loc.Town, &loc.Label, &loc.IsDefault)
	if err != nil {
		return nil, errors.NewStoreError("failed to create location", "locations", "create", err)
	}
	return &loc, nil
}

// CreateDefault provisions the fallback location for a source that has no
// usable rows yet.
func (r *LocationRepository) CreateDefault(ctx context.Context, sourceID int64, seed domain.LocationSeed) (*domain.Location, error) {
	seed.IsDefault = true
	return r.Create(ctx, sourceID, seed)
}

// Seed inserts any of the given locations that do not exist yet and reports
// how many were created. Reseeding is safe.
func (r *LocationRepository) Seed(ctx context.Context, sourceID int64, seeds []domain.LocationSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		var id int64
		err := r.db.GetDB().QueryRowContext(ctx,
			`SELECT id FROM locations WHERE source_id = $1 AND town = $2 AND label = $3`,
			sourceID, seed.Town, seed.Label).Scan(&id)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return created, errors.NewStoreError("failed to check location", "locations", "seed", err)
		}
		if _, err := r.Create(ctx, sourceID, seed); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
