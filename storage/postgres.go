package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commprop_intel/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		property_name TEXT,
		address TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		property_type TEXT,
		property_subtype TEXT,
		transaction_type TEXT,
		price BIGINT,
		price_type TEXT,
		gfa_sqft INTEGER,
		lease_type TEXT,
		lease_balance_years INTEGER,
		floor_level TEXT,
		features JSONB,
		contact_name TEXT,
		contact_phone TEXT,
		is_owner BOOLEAN NOT NULL DEFAULT FALSE,
		is_agent BOOLEAN NOT NULL DEFAULT FALSE,
		agency_name TEXT,
		cobroke_allowed BOOLEAN,
		raw_text TEXT NOT NULL,
		category TEXT,
		first_seen_date DATE,
		last_seen_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS listing_snapshots (
		id BIGSERIAL PRIMARY KEY,
		listing_id TEXT NOT NULL REFERENCES listings(id),
		seen_date DATE,
		price BIGINT,
		raw_text TEXT
	);

	CREATE TABLE IF NOT EXISTS advertisers (
		phone TEXT PRIMARY KEY,
		name TEXT,
		is_owner BOOLEAN NOT NULL DEFAULT FALSE,
		is_agent BOOLEAN NOT NULL DEFAULT FALSE,
		agency_name TEXT,
		total_listings INTEGER NOT NULL DEFAULT 0,
		first_seen DATE,
		last_seen DATE
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		status TEXT,
		listings_found INTEGER NOT NULL DEFAULT 0,
		listings_new INTEGER NOT NULL DEFAULT 0,
		listings_updated INTEGER NOT NULL DEFAULT 0,
		errors_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_listings_phone ON listings(contact_phone);
	CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(property_type, transaction_type);
	CREATE INDEX IF NOT EXISTS idx_listings_coords ON listings(latitude, longitude);
	CREATE INDEX IF NOT EXISTS idx_snapshots_listing ON listing_snapshots(listing_id, seen_date);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Listings
// =============================================================================

func (s *PostgresStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `
		SELECT id, property_name, address, latitude, longitude, property_type,
			property_subtype, transaction_type, price, price_type, gfa_sqft, lease_type,
			lease_balance_years, floor_level, features, contact_name, contact_phone,
			is_owner, is_agent, agency_name, cobroke_allowed, raw_text, category,
			first_seen_date, last_seen_date, created_at
		FROM listings WHERE id = $1`

	var l models.Listing
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.PropertyName, &l.Address, &l.Latitude, &l.Longitude, &l.PropertyType,
		&l.PropertySubtype, &l.TransactionType, &l.Price, &l.PriceType, &l.GfaSqft, &l.LeaseType,
		&l.LeaseBalanceYears, &l.FloorLevel, &l.Features, &l.ContactName, &l.ContactPhone,
		&l.IsOwner, &l.IsAgent, &l.AgencyName, &l.CobrokeAllowed, &l.RawText, &l.Category,
		&l.FirstSeenDate, &l.LastSeenDate, &l.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) CreateListing(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (
			id, property_name, address, latitude, longitude, property_type,
			property_subtype, transaction_type, price, price_type, gfa_sqft, lease_type,
			lease_balance_years, floor_level, features, contact_name, contact_phone,
			is_owner, is_agent, agency_name, cobroke_allowed, raw_text, category,
			first_seen_date, last_seen_date, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`

	_, err := s.pool.Exec(ctx, query,
		l.ID, l.PropertyName, l.Address, l.Latitude, l.Longitude, l.PropertyType,
		l.PropertySubtype, l.TransactionType, l.Price, l.PriceType, l.GfaSqft, l.LeaseType,
		l.LeaseBalanceYears, l.FloorLevel, l.Features, l.ContactName, l.ContactPhone,
		l.IsOwner, l.IsAgent, l.AgencyName, l.CobrokeAllowed, l.RawText, l.Category,
		l.FirstSeenDate, l.LastSeenDate, l.CreatedAt,
	)
	return err
}

func (s *PostgresStore) TouchListing(ctx context.Context, id string, lastSeen time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET last_seen_date = $2 WHERE id = $1`, id, lastSeen)
	return err
}

func (s *PostgresStore) ListListings(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := `
		SELECT id, property_name, address, latitude, longitude, property_type,
			property_subtype, transaction_type, price, price_type, gfa_sqft, lease_type,
			lease_balance_years, floor_level, features, contact_name, contact_phone,
			is_owner, is_agent, agency_name, cobroke_allowed, raw_text, category,
			first_seen_date, last_seen_date, created_at
		FROM listings WHERE 1=1`
	args := []interface{}{}

	if f.PropertyType != nil {
		args = append(args, *f.PropertyType)
		query += fmt.Sprintf(" AND property_type = $%d", len(args))
	}
	if f.TransactionType != nil {
		args = append(args, *f.TransactionType)
		query += fmt.Sprintf(" AND transaction_type = $%d", len(args))
	}
	if f.IsOwner != nil {
		args = append(args, *f.IsOwner)
		query += fmt.Sprintf(" AND is_owner = $%d", len(args))
	}
	if f.IsAgent != nil {
		args = append(args, *f.IsAgent)
		query += fmt.Sprintf(" AND is_agent = $%d", len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		query += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		query += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	if f.HasCoords != nil {
		if *f.HasCoords {
			query += " AND latitude IS NOT NULL AND longitude IS NOT NULL"
		} else {
			query += " AND (latitude IS NULL OR longitude IS NULL)"
		}
	}
	query += " ORDER BY last_seen_date DESC, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.ID, &l.PropertyName, &l.Address, &l.Latitude, &l.Longitude, &l.PropertyType,
			&l.PropertySubtype, &l.TransactionType, &l.Price, &l.PriceType, &l.GfaSqft, &l.LeaseType,
			&l.LeaseBalanceYears, &l.FloorLevel, &l.Features, &l.ContactName, &l.ContactPhone,
			&l.IsOwner, &l.IsAgent, &l.AgencyName, &l.CobrokeAllowed, &l.RawText, &l.Category,
			&l.FirstSeenDate, &l.LastSeenDate, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) CountListings(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

func (s *PostgresStore) CountListingsByPhone(ctx context.Context, phone string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE contact_phone = $1`, phone).Scan(&count)
	return count, err
}

func (s *PostgresStore) ListingsWithoutCoords(ctx context.Context, limit int) ([]models.Listing, error) {
	query := `
		SELECT id, property_name, address, latitude, longitude, property_type,
			property_subtype, transaction_type, price, price_type, gfa_sqft, lease_type,
			lease_balance_years, floor_level, features, contact_name, contact_phone,
			is_owner, is_agent, agency_name, cobroke_allowed, raw_text, category,
			first_seen_date, last_seen_date, created_at
		FROM listings
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY last_seen_date DESC`
	args := []interface{}{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectListings(rows)
}

func (s *PostgresStore) SetListingCoords(ctx context.Context, id string, lat, lng float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE listings SET latitude = $2, longitude = $3 WHERE id = $1`, id, lat, lng)
	return err
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snap *models.Snapshot) error {
	query := `
		INSERT INTO listing_snapshots (listing_id, seen_date, price, raw_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		snap.ListingID, snap.SeenDate, snap.Price, snap.RawText,
	).Scan(&snap.ID)
}

func (s *PostgresStore) SnapshotsForListing(ctx context.Context, listingID string) ([]models.Snapshot, error) {
	query := `
		SELECT id, listing_id, seen_date, price, raw_text
		FROM listing_snapshots
		WHERE listing_id = $1
		ORDER BY seen_date`

	rows, err := s.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(&snap.ID, &snap.ListingID, &snap.SeenDate, &snap.Price, &snap.RawText); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// =============================================================================
// Advertisers
// =============================================================================

func (s *PostgresStore) GetAdvertiser(ctx context.Context, phone string) (*models.Advertiser, error) {
	query := `
		SELECT phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen
		FROM advertisers WHERE phone = $1`

	var a models.Advertiser
	err := s.pool.QueryRow(ctx, query, phone).Scan(
		&a.Phone, &a.Name, &a.IsOwner, &a.IsAgent, &a.AgencyName,
		&a.TotalListings, &a.FirstSeen, &a.LastSeen,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) CreateAdvertiser(ctx context.Context, a *models.Advertiser) error {
	query := `
		INSERT INTO advertisers (phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		a.Phone, a.Name, a.IsOwner, a.IsAgent, a.AgencyName, a.TotalListings, a.FirstSeen, a.LastSeen)
	return err
}

func (s *PostgresStore) IncrementAdvertiser(ctx context.Context, phone string, lastSeen time.Time) error {
	query := `
		UPDATE advertisers SET total_listings = total_listings + 1, last_seen = $2
		WHERE phone = $1`

	_, err := s.pool.Exec(ctx, query, phone, lastSeen)
	return err
}

func (s *PostgresStore) TopAdvertisers(ctx context.Context, limit int, isOwner *bool) ([]models.Advertiser, error) {
	query := `
		SELECT phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen
		FROM advertisers`
	args := []interface{}{}
	if isOwner != nil {
		args = append(args, *isOwner)
		query += fmt.Sprintf(" WHERE is_owner = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY total_listings DESC, phone LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advertisers []models.Advertiser
	for rows.Next() {
		var a models.Advertiser
		if err := rows.Scan(
			&a.Phone, &a.Name, &a.IsOwner, &a.IsAgent, &a.AgencyName,
			&a.TotalListings, &a.FirstSeen, &a.LastSeen,
		); err != nil {
			return nil, err
		}
		advertisers = append(advertisers, a)
	}
	return advertisers, rows.Err()
}

// =============================================================================
// Scrape Runs
// =============================================================================

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.ScrapeRun) (int64, error) {
	query := `
		INSERT INTO scrape_runs (started_at, status, listings_found, listings_new, listings_updated, errors_count)
		VALUES ($1, $2, 0, 0, 0, 0)
		RETURNING id`

	err := s.pool.QueryRow(ctx, query, run.StartedAt, run.Status).Scan(&run.ID)
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.ScrapeRun) error {
	query := `
		UPDATE scrape_runs SET
			finished_at = $2, status = $3, listings_found = $4, listings_new = $5,
			listings_updated = $6, errors_count = $7, error_message = $8
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.ListingsFound, run.ListingsNew,
		run.ListingsUpdated, run.ErrorsCount, run.ErrorMessage,
	)
	return err
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*models.ScrapeRun, error) {
	query := `
		SELECT id, started_at, finished_at, status, listings_found, listings_new,
			listings_updated, errors_count, error_message
		FROM scrape_runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1`

	var run models.ScrapeRun
	err := s.pool.QueryRow(ctx, query).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.ListingsFound,
		&run.ListingsNew, &run.ListingsUpdated, &run.ErrorsCount, &run.ErrorMessage,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
