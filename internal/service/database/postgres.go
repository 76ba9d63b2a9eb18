package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/config"
)

type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresService(cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return &PostgresService{
		db:     db,
		logger: logger,
	}, nil
}

func (ps *PostgresService) GetDB() *sql.DB {
	return ps.db
}

func (ps *PostgresService) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func (ps *PostgresService) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// EnsureSchema applies the scraper's DDL. Every statement is idempotent, so
// it runs on each startup.
func (ps *PostgresService) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := ps.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	ps.logger.Info("Database schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		id BIGSERIAL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		schedule_url TEXT NOT NULL,
		base_url TEXT NOT NULL DEFAULT '',
		image_base_url TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT 'static',
		rate_limit_seconds DOUBLE PRECISION NOT NULL DEFAULT 1,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		last_scraped TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		source_id BIGINT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
		town TEXT NOT NULL,
		label TEXT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (source_id, town, label)
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		source_id BIGINT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		profile_url TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL DEFAULT '',
		age INTEGER,
		nationality TEXT,
		ethnicity TEXT,
		height TEXT,
		weight TEXT,
		bust TEXT,
		bust_type TEXT,
		measurements TEXT,
		hair_color TEXT,
		eye_color TEXT,
		service_type TEXT,
		images TEXT NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_expired BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (source_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id BIGSERIAL PRIMARY KEY,
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		day_of_week TEXT NOT NULL,
		date DATE NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		location_id BIGINT NOT NULL REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS listing_tags (
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (listing_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_source_active ON listings (source_id, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_listing ON schedules (listing_id)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules (date)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_source ON locations (source_id)`,
}
