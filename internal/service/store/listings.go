package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/service/database"
	"github.com/castboard/scraper/internal/util"
	"github.com/castboard/scraper/pkg/errors"
)

// LocationResolver maps a raw location string from a schedule slot to a
// persisted location id for the source.
type LocationResolver interface {
	Match(ctx context.Context, sourceID int64, raw string) (int64, error)
}

// ListingRepository persists listings together with their schedule rows and
// tags. Reconcile is the write path the runner uses; everything it touches
// for one listing happens in a single transaction.
type ListingRepository struct {
	db        *database.PostgresService
	locations LocationResolver
	logger    *zap.Logger
}

func NewListingRepository(db *database.PostgresService, locations LocationResolver, logger *zap.Logger) *ListingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingRepository{db: db, locations: locations, logger: logger}
}

// GetByName returns the listing matching the name case-insensitively within
// a source, or nil when none exists.
func (r *ListingRepository) GetByName(ctx context.Context, sourceID int64, name string) (*domain.Listing, error) {
	const query = `
		SELECT id, source_id, name, profile_url, tier, age, nationality, ethnicity,
		       height, weight, bust, bust_type, measurements, hair_color, eye_color,
		       service_type, images, is_active, is_expired, created_at, updated_at
		FROM listings WHERE source_id = $1 AND LOWER(name) = LOWER($2)`

	var (
		listing    domain.Listing
		profileURL sql.NullString
		tier       sql.NullString
		age        sql.NullInt64
		text       [10]sql.NullString
		images     string
	)
	err := r.db.GetDB().QueryRowContext(ctx, query, sourceID, name).Scan(
		&listing.ID, &listing.SourceID, &listing.Name, &profileURL, &tier, &age,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6], &text[7], &text[8], &text[9],
		&images, &listing.IsActive, &listing.IsExpired, &listing.CreatedAt, &listing.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to get listing", "listings", "get", err)
	}

	listing.ProfileURL = profileURL.String
	listing.Fields.Tier = tier.String
	listing.Fields.Age = int(age.Int64)
	listing.Fields.Nationality = text[0].String
	listing.Fields.Ethnicity = text[1].String
	listing.Fields.Height = text[2].String
	listing.Fields.Weight = text[3].String
	listing.Fields.Bust = text[4].String
	listing.Fields.BustType = text[5].String
	listing.Fields.Measurements = text[6].String
	listing.Fields.HairColor = text[7].String
	listing.Fields.EyeColor = text[8].String
	listing.Fields.ServiceType = text[9].String
	listing.Fields.Images = decodeImages(images)
	return &listing, nil
}

// Reconcile writes one scraped listing. The row is inserted on first sight
// and fully overwritten afterwards, the schedule rows are recreated from the
// given slots, and the tag set is replaced. Returns whether the listing was
// new. On success listing.ID carries the persisted id.
func (r *ListingRepository) Reconcile(ctx context.Context, listing *domain.Listing, slots []domain.RawSlot) (bool, error) {
	// Resolve locations before opening the transaction; the matcher issues
	// queries of its own and may create the default row.
	rows, err := r.scheduleRows(ctx, listing.SourceID, slots)
	if err != nil {
		return false, err
	}

	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return false, errors.NewStoreError("failed to begin transaction", "listings", "reconcile", err)
	}
	defer tx.Rollback()

	listingID, err := findListingID(ctx, tx, listing.SourceID, listing.Name)
	if err != nil {
		return false, err
	}

	created := listingID == 0
	if created {
		listingID, err = insertListing(ctx, tx, listing)
	} else {
		err = updateListing(ctx, tx, listingID, listing)
	}
	if err != nil {
		return false, err
	}

	if err := replaceSchedules(ctx, tx, listingID, rows); err != nil {
		return false, err
	}
	if err := replaceTags(ctx, tx, listingID, listing.Fields.Tags); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, errors.NewStoreError("failed to commit", "listings", "reconcile", err)
	}
	listing.ID = listingID
	return created, nil
}

// ReplaceSchedules recreates a listing's schedule rows from raw slots,
// outside the usual reconcile path.
func (r *ListingRepository) ReplaceSchedules(ctx context.Context, sourceID, listingID int64, slots []domain.RawSlot) error {
	rows, err := r.scheduleRows(ctx, sourceID, slots)
	if err != nil {
		return err
	}
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("failed to begin transaction", "schedules", "replace", err)
	}
	defer tx.Rollback()
	if err := replaceSchedules(ctx, tx, listingID, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("failed to commit", "schedules", "replace", err)
	}
	return nil
}

// ReplaceTags swaps a listing's tag set, outside the usual reconcile path.
func (r *ListingRepository) ReplaceTags(ctx context.Context, listingID int64, tags []string) error {
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("failed to begin transaction", "tags", "replace", err)
	}
	defer tx.Rollback()
	if err := replaceTags(ctx, tx, listingID, tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("failed to commit", "tags", "replace", err)
	}
	return nil
}

// MarkInactiveBefore expires every active listing of a source that has not
// been touched since the cutoff. The runner never calls this; it exists for
// out-of-band cleanup.
func (r *ListingRepository) MarkInactiveBefore(ctx context.Context, sourceID int64, cutoff time.Time) (int64, error) {
	res, err := r.db.GetDB().ExecContext(ctx,
		`UPDATE listings SET is_active = FALSE, is_expired = TRUE, updated_at = NOW()
		 WHERE source_id = $1 AND is_active AND updated_at < $2`,
		sourceID, cutoff)
	if err != nil {
		return 0, errors.NewStoreError("failed to expire listings", "listings", "update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewStoreError("failed to count expired listings", "listings", "update", err)
	}
	return affected, nil
}

// scheduleRows resolves raw slots into persistable rows. Slots without a
// canonical weekday carry no date and are dropped.
func (r *ListingRepository) scheduleRows(ctx context.Context, sourceID int64, slots []domain.RawSlot) ([]domain.ScheduleRow, error) {
	rows := make([]domain.ScheduleRow, 0, len(slots))
	for _, slot := range slots {
		date, ok := util.NextDate(slot.Day, util.NowVenue())
		if !ok {
			r.logger.Debug("Skipping slot without weekday",
				zap.String("day", slot.Day),
				zap.String("location", slot.Location))
			continue
		}
		locationID, err := r.locations.Match(ctx, sourceID, slot.Location)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.ScheduleRow{
			Day:        slot.Day,
			Date:       date,
			StartTime:  slot.Start,
			EndTime:    slot.End,
			LocationID: locationID,
		})
	}
	return rows, nil
}

func findListingID(ctx context.Context, tx *sql.Tx, sourceID int64, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM listings WHERE source_id = $1 AND LOWER(name) = LOWER($2)`,
		sourceID, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewStoreError("failed to look up listing", "listings", "get", err)
	}
	return id, nil
}

func insertListing(ctx context.Context, tx *sql.Tx, listing *domain.Listing) (int64, error) {
	const query = `
		INSERT INTO listings (source_id, name, profile_url, tier, age, nationality, ethnicity,
		                      height, weight, bust, bust_type, measurements, hair_color, eye_color,
		                      service_type, images, is_active, is_expired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, TRUE, FALSE)
		RETURNING id`

	f := listing.Fields
	var id int64
	err := tx.QueryRowContext(ctx, query,
		listing.SourceID, listing.Name, listing.ProfileURL, f.Tier, nullInt(f.Age),
		nullString(f.Nationality), nullString(f.Ethnicity), nullString(f.Height), nullString(f.Weight),
		nullString(f.Bust), nullString(f.BustType), nullString(f.Measurements),
		nullString(f.HairColor), nullString(f.EyeColor), nullString(f.ServiceType),
		encodeImages(f.Images),
	).Scan(&id)
	if err != nil {
		return 0, errors.NewStoreError("failed to insert listing", "listings", "insert", err)
	}
	return id, nil
}

func updateListing(ctx context.Context, tx *sql.Tx, listingID int64, listing *domain.Listing) error {
	const query = `
		UPDATE listings SET name = $2, profile_url = $3, tier = $4, age = $5,
		       nationality = $6, ethnicity = $7, height = $8, weight = $9,
		       bust = $10, bust_type = $11, measurements = $12, hair_color = $13,
		       eye_color = $14, service_type = $15, images = $16,
		       is_active = TRUE, is_expired = FALSE, updated_at = NOW()
		WHERE id = $1`

	f := listing.Fields
	_, err := tx.ExecContext(ctx, query,
		listingID, listing.Name, listing.ProfileURL, f.Tier, nullInt(f.Age),
		nullString(f.Nationality), nullString(f.Ethnicity), nullString(f.Height), nullString(f.Weight),
		nullString(f.Bust), nullString(f.BustType), nullString(f.Measurements),
		nullString(f.HairColor), nullString(f.EyeColor), nullString(f.ServiceType),
		encodeImages(f.Images))
	if err != nil {
		return errors.NewStoreError("failed to update listing", "listings", "update", err)
	}
	return nil
}

func replaceSchedules(ctx context.Context, tx *sql.Tx, listingID int64, rows []domain.ScheduleRow) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE listing_id = $1`, listingID); err != nil {
		return errors.NewStoreError("failed to clear schedules", "schedules", "delete", err)
	}
	for _, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedules (listing_id, day_of_week, date, start_time, end_time, location_id)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			listingID, row.Day, row.Date, row.StartTime, row.EndTime, row.LocationID)
		if err != nil {
			return errors.NewStoreError("failed to insert schedule", "schedules", "insert", err)
		}
	}
	return nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, listingID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_tags WHERE listing_id = $1`, listingID); err != nil {
		return errors.NewStoreError("failed to clear tags", "tags", "delete", err)
	}
	for _, tag := range tags {
		tagID, err := getOrCreateTag(ctx, tx, tag)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO listing_tags (listing_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			listingID, tagID)
		if err != nil {
			return errors.NewStoreError("failed to attach tag", "tags", "insert", err)
		}
	}
	return nil
}

func getOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	// DO UPDATE makes RETURNING yield the id on conflict as well.
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, errors.NewStoreError("failed to upsert tag", "tags", "upsert", err)
	}
	return id, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func encodeImages(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeImages(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var images []string
	if err := json.Unmarshal([]byte(data), &images); err != nil {
		return nil
	}
	return images
}
