package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service/database"
	"github.com/castboard/scraper/pkg/errors"
)

// SourceRepository persists the source catalog. Rows are created lazily the
// first time a source is scraped and updated from the catalog afterwards.
type SourceRepository struct {
	db     *database.PostgresService
	logger *zap.Logger
}

func NewSourceRepository(db *database.PostgresService, logger *zap.Logger) *SourceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceRepository{db: db, logger: logger}
}

// GetOrCreate returns the persisted row for a catalog entry, inserting it on
// first sight. Descriptive columns follow the catalog so config changes land
// on the next run; the enabled flag is left alone once the row exists so an
// operator can switch a source off in the database without the catalog
// turning it back on.
func (r *SourceRepository) GetOrCreate(ctx context.Context, cfg domain.SourceConfig) (*domain.Source, error) {
	const query = `
		INSERT INTO sources (key, name, schedule_url, base_url, image_base_url, mode, rate_limit_seconds, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			schedule_url = EXCLUDED.schedule_url,
			base_url = EXCLUDED.base_url,
			image_base_url = EXCLUDED.image_base_url,
			mode = EXCLUDED.mode,
			rate_limit_seconds = EXCLUDED.rate_limit_seconds
		RETURNING id, key, name, schedule_url, mode, enabled, last_scraped, created_at`

	var (
		src         domain.Source
		mode        string
		lastScraped sql.NullTime
	)
	err := r.db.GetDB().QueryRowContext(ctx, query,
		cfg.Key, cfg.Name, cfg.ScheduleURL, cfg.BaseURL, cfg.ImageBaseURL,
		cfg.Mode.String(), cfg.RateLimitSeconds, cfg.Enabled,
	).Scan(&src.ID, &src.Key, &src.Name, &src.ScheduleURL, &mode, &src.Enabled, &lastScraped, &src.CreatedAt)
	if err != nil {
		return nil, errors.NewStoreError("failed to upsert source", "sources", "get_or_create", err)
	}

	src.Mode = domain.FetchMode(mode)
	if lastScraped.Valid {
		at := lastScraped.Time
		src.LastScraped = &at
	}
	return &src, nil
}

// UpdateLastScraped stamps a source after a run finished reconciling.
func (r *SourceRepository) UpdateLastScraped(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := r.db.GetDB().ExecContext(ctx,
		`UPDATE sources SET last_scraped = $2 WHERE id = $1`, sourceID, at)
	if err != nil {
		return errors.NewStoreError("failed to update last_scraped", "sources", "update", err)
	}
	return nil
}

// SetEnabled flips the persisted enabled flag for a source key.
func (r *SourceRepository) SetEnabled(ctx context.Context, key string, enabled bool) error {
	res, err := r.db.GetDB().ExecContext(ctx,
		`UPDATE sources SET enabled = $2 WHERE key = $1`, key, enabled)
	if err != nil {
		return errors.NewStoreError("failed to update enabled flag", "sources", "update", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errors.NewStoreError("source not found", "sources", "update", sql.ErrNoRows)
	}
	return nil
}

// List returns every persisted source ordered by key. Rows that fail to scan
// are logged and skipped.
func (r *SourceRepository) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := r.db.GetDB().QueryContext(ctx,
		`SELECT id, key, name, schedule_url, mode, enabled, last_scraped, created_at
		 FROM sources ORDER BY key`)
	if err != nil {
		return nil, errors.NewStoreError("failed to list sources", "sources", "list", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var (
			src         domain.Source
			mode        string
			lastScraped sql.NullTime
		)
		if err := rows.Scan(&src.ID, &src.Key, &src.Name, &src.ScheduleURL, &mode, &src.Enabled, &lastScraped, &src.CreatedAt); err != nil {
			r.logger.Warn("Failed to scan source row", zap.Error(err))
			continue
		}
		src.Mode = domain.FetchMode(mode)
		if lastScraped.Valid {
			at := lastScraped.Time
			src.LastScraped = &at
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to read source rows", "sources", "list", err)
	}
	return sources, nil
}
