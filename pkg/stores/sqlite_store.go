package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const resortColumns = `id, slug, name, region, state, latitude, longitude,
	base_depth, summit_depth, new_snow_24h, new_snow_48h,
	trails_open, trails_total, lifts_open, lifts_total, acres_open,
	is_open, conditions_updated, url, last_scraped, created_at`

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	cfg  Config
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	return &SQLiteStore{
		path: cfg.Path,
		cfg:  cfg,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// UpsertResort inserts a resort or updates the existing record with the same
// slug. created_at is preserved on update; last_scraped is always refreshed.
func (s *SQLiteStore) UpsertResort(ctx context.Context, resort *Resort) error {
	if resort.Slug == "" {
		return fmt.Errorf("resort slug is required")
	}

	now := time.Now().UTC()
	if resort.LastScraped.IsZero() {
		resort.LastScraped = now
	}
	if resort.CreatedAt.IsZero() {
		resort.CreatedAt = now
	}

	query := `
		INSERT INTO resorts (
			slug, name, region, state, latitude, longitude,
			base_depth, summit_depth, new_snow_24h, new_snow_48h,
			trails_open, trails_total, lifts_open, lifts_total, acres_open,
			is_open, conditions_updated, url, last_scraped, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			region = excluded.region,
			state = excluded.state,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			base_depth = excluded.base_depth,
			summit_depth = excluded.summit_depth,
			new_snow_24h = excluded.new_snow_24h,
			new_snow_48h = excluded.new_snow_48h,
			trails_open = excluded.trails_open,
			trails_total = excluded.trails_total,
			lifts_open = excluded.lifts_open,
			lifts_total = excluded.lifts_total,
			acres_open = excluded.acres_open,
			is_open = excluded.is_open,
			conditions_updated = excluded.conditions_updated,
			url = excluded.url,
			last_scraped = excluded.last_scraped
	`

	_, err := s.db.ExecContext(ctx, query,
		resort.Slug,
		resort.Name,
		resort.Region,
		resort.State,
		resort.Latitude,
		resort.Longitude,
		resort.BaseDepth,
		resort.SummitDepth,
		resort.NewSnow24h,
		resort.NewSnow48h,
		resort.TrailsOpen,
		resort.TrailsTotal,
		resort.LiftsOpen,
		resort.LiftsTotal,
		resort.AcresOpen,
		resort.IsOpen,
		resort.ConditionsUpdated,
		resort.URL,
		resort.LastScraped,
		resort.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert resort: %w", err)
	}

	return nil
}

// GetResort retrieves a resort by slug.
func (s *SQLiteStore) GetResort(ctx context.Context, slug string) (*Resort, error) {
	query := `SELECT ` + resortColumns + ` FROM resorts WHERE slug = ?`

	resort := &Resort{}
	err := scanResort(s.db.QueryRowContext(ctx, query, slug), resort)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resort %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resort: %w", err)
	}

	return resort, nil
}

// ListResorts lists all cached resorts ordered by name.
func (s *SQLiteStore) ListResorts(ctx context.Context) ([]*Resort, error) {
	query := `SELECT ` + resortColumns + ` FROM resorts ORDER BY name ASC`
	return s.queryResorts(ctx, query)
}

// ListResortsWithCoordinates lists all resorts that have a known location.
func (s *SQLiteStore) ListResortsWithCoordinates(ctx context.Context) ([]*Resort, error) {
	query := `SELECT ` + resortColumns + ` FROM resorts
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY name ASC`
	return s.queryResorts(ctx, query)
}

func (s *SQLiteStore) queryResorts(ctx context.Context, query string, args ...any) ([]*Resort, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resorts: %w", err)
	}
	defer rows.Close()

	resorts := []*Resort{}
	for rows.Next() {
		resort := &Resort{}
		if err := scanResort(rows, resort); err != nil {
			return nil, fmt.Errorf("failed to scan resort: %w", err)
		}
		resorts = append(resorts, resort)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resorts: %w", err)
	}

	return resorts, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanResort.
type scanner interface {
	Scan(dest ...any) error
}

func scanResort(row scanner, resort *Resort) error {
	return row.Scan(
		&resort.ID,
		&resort.Slug,
		&resort.Name,
		&resort.Region,
		&resort.State,
		&resort.Latitude,
		&resort.Longitude,
		&resort.BaseDepth,
		&resort.SummitDepth,
		&resort.NewSnow24h,
		&resort.NewSnow48h,
		&resort.TrailsOpen,
		&resort.TrailsTotal,
		&resort.LiftsOpen,
		&resort.LiftsTotal,
		&resort.AcresOpen,
		&resort.IsOpen,
		&resort.ConditionsUpdated,
		&resort.URL,
		&resort.LastScraped,
		&resort.CreatedAt,
	)
}

// CountFreshResorts counts resorts scraped at or after the given time.
func (s *SQLiteStore) CountFreshResorts(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM resorts WHERE last_scraped >= ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fresh resorts: %w", err)
	}

	return count, nil
}

// DeleteResort deletes a resort by slug.
func (s *SQLiteStore) DeleteResort(ctx context.Context, slug string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resorts WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete resort: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("resort %s: %w", slug, ErrNotFound)
	}

	return nil
}

// CreateScrapeRun creates a new scrape run record.
func (s *SQLiteStore) CreateScrapeRun(ctx context.Context, run *ScrapeRun) error {
	query := `
		INSERT INTO scrape_runs (id, status, states_scraped, resorts_upserted, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.StatesScraped,
		run.ResortsUpserted,
		run.Error,
		run.StartedAt,
		run.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create scrape run: %w", err)
	}

	return nil
}

// FinishScrapeRun marks a scrape run as completed or failed.
func (s *SQLiteStore) FinishScrapeRun(ctx context.Context, id string, status ScrapeRunStatus, states, resorts int, errMsg *string) error {
	query := `
		UPDATE scrape_runs
		SET status = ?, states_scraped = ?, resorts_upserted = ?, error = ?, completed_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query, status, states, resorts, errMsg, now, id)
	if err != nil {
		return fmt.Errorf("failed to finish scrape run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("scrape run %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListScrapeRuns lists the most recent scrape runs.
func (s *SQLiteStore) ListScrapeRuns(ctx context.Context, limit int) ([]*ScrapeRun, error) {
	query := `
		SELECT id, status, states_scraped, resorts_upserted, error, started_at, completed_at
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrape runs: %w", err)
	}
	defer rows.Close()

	runs := []*ScrapeRun{}
	for rows.Next() {
		run := &ScrapeRun{}
		err := rows.Scan(
			&run.ID,
			&run.Status,
			&run.StatesScraped,
			&run.ResortsUpserted,
			&run.Error,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scrape runs: %w", err)
	}

	return runs, nil
}

// GetGeocodeEntry retrieves a non-expired geocode cache entry by query.
func (s *SQLiteStore) GetGeocodeEntry(ctx context.Context, query string) (*GeocodeEntry, error) {
	stmt := `
		SELECT query, latitude, longitude, expires_at, created_at
		FROM geocode_cache
		WHERE query = ? AND expires_at > ?
	`

	entry := &GeocodeEntry{}
	err := s.db.QueryRowContext(ctx, stmt, query, time.Now().UTC()).Scan(
		&entry.Query,
		&entry.Latitude,
		&entry.Longitude,
		&entry.ExpiresAt,
		&entry.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("geocode entry %q: %w", query, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geocode entry: %w", err)
	}

	return entry, nil
}

// PutGeocodeEntry inserts or replaces a geocode cache entry.
func (s *SQLiteStore) PutGeocodeEntry(ctx context.Context, entry *GeocodeEntry) error {
	stmt := `
		INSERT INTO geocode_cache (query, latitude, longitude, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			expires_at = excluded.expires_at
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, stmt,
		entry.Query,
		entry.Latitude,
		entry.Longitude,
		entry.ExpiresAt.UTC(),
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to put geocode entry: %w", err)
	}

	return nil
}

// PurgeExpiredGeocodeEntries deletes all expired geocode cache entries.
func (s *SQLiteStore) PurgeExpiredGeocodeEntries(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge geocode cache: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
