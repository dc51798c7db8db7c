package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"commprop_intel/models"
)

// SQLiteStore is the default local store. It also backs store-level tests.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		property_name TEXT,
		address TEXT,
		latitude REAL,
		longitude REAL,
		property_type TEXT,
		property_subtype TEXT,
		transaction_type TEXT,
		price INTEGER,
		price_type TEXT,
		gfa_sqft INTEGER,
		lease_type TEXT,
		lease_balance_years INTEGER,
		floor_level TEXT,
		features JSON,
		contact_name TEXT,
		contact_phone TEXT,
		is_owner BOOLEAN DEFAULT FALSE,
		is_agent BOOLEAN DEFAULT FALSE,
		agency_name TEXT,
		cobroke_allowed BOOLEAN,
		raw_text TEXT NOT NULL,
		category TEXT,
		first_seen_date DATE,
		last_seen_date DATE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS listing_snapshots (
		id INTEGER PRIMARY KEY,
		listing_id TEXT NOT NULL,
		seen_date DATE,
		price INTEGER,
		raw_text TEXT,
		FOREIGN KEY (listing_id) REFERENCES listings(id)
	);

	CREATE TABLE IF NOT EXISTS advertisers (
		phone TEXT PRIMARY KEY,
		name TEXT,
		is_owner BOOLEAN DEFAULT FALSE,
		is_agent BOOLEAN DEFAULT FALSE,
		agency_name TEXT,
		total_listings INTEGER DEFAULT 0,
		first_seen DATE,
		last_seen DATE
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		listings_new INTEGER DEFAULT 0,
		listings_updated INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_listings_phone ON listings(contact_phone);
	CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(property_type, transaction_type);
	CREATE INDEX IF NOT EXISTS idx_listings_coords ON listings(latitude, longitude);
	CREATE INDEX IF NOT EXISTS idx_snapshots_listing ON listing_snapshots(listing_id, seen_date);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const listingColumns = `id, property_name, address, latitude, longitude, property_type,
	property_subtype, transaction_type, price, price_type, gfa_sqft, lease_type,
	lease_balance_years, floor_level, features, contact_name, contact_phone,
	is_owner, is_agent, agency_name, cobroke_allowed, raw_text, category,
	first_seen_date, last_seen_date, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var (
		propertyName, address, propertyType, propertySubtype sql.NullString
		transactionType, priceType, leaseType, floorLevel    sql.NullString
		featuresJSON, contactName, contactPhone, agencyName  sql.NullString
		category                                             sql.NullString
		latitude, longitude                                  sql.NullFloat64
		price, gfaSqft, leaseBalanceYears                    sql.NullInt64
		cobrokeAllowed                                       sql.NullBool
	)

	err := row.Scan(&l.ID, &propertyName, &address, &latitude, &longitude, &propertyType,
		&propertySubtype, &transactionType, &price, &priceType, &gfaSqft, &leaseType,
		&leaseBalanceYears, &floorLevel, &featuresJSON, &contactName, &contactPhone,
		&l.IsOwner, &l.IsAgent, &agencyName, &cobrokeAllowed, &l.RawText, &category,
		&l.FirstSeenDate, &l.LastSeenDate, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	l.PropertyName = strOrNil(propertyName)
	l.Address = strOrNil(address)
	l.Latitude = floatOrNil(latitude)
	l.Longitude = floatOrNil(longitude)
	l.PropertyType = strOrNil(propertyType)
	l.PropertySubtype = strOrNil(propertySubtype)
	l.TransactionType = strOrNil(transactionType)
	l.Price = intOrNil(price)
	l.PriceType = strOrNil(priceType)
	l.GfaSqft = intOrNil(gfaSqft)
	l.LeaseType = strOrNil(leaseType)
	l.LeaseBalanceYears = intOrNil(leaseBalanceYears)
	l.FloorLevel = strOrNil(floorLevel)
	l.ContactName = strOrNil(contactName)
	l.ContactPhone = strOrNil(contactPhone)
	l.AgencyName = strOrNil(agencyName)
	l.CobrokeAllowed = boolOrNil(cobrokeAllowed)
	l.Category = strOrNil(category)
	if featuresJSON.Valid && featuresJSON.String != "" {
		json.Unmarshal([]byte(featuresJSON.String), &l.Features)
	}
	return &l, nil
}

func (s *SQLiteStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStore) CreateListing(ctx context.Context, l *models.Listing) error {
	featuresJSON, _ := json.Marshal(l.Features)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.PropertyName, l.Address, l.Latitude, l.Longitude, l.PropertyType,
		l.PropertySubtype, l.TransactionType, l.Price, l.PriceType, l.GfaSqft, l.LeaseType,
		l.LeaseBalanceYears, l.FloorLevel, string(featuresJSON), l.ContactName, l.ContactPhone,
		l.IsOwner, l.IsAgent, l.AgencyName, l.CobrokeAllowed, l.RawText, l.Category,
		l.FirstSeenDate, l.LastSeenDate, l.CreatedAt)
	return err
}

func (s *SQLiteStore) TouchListing(ctx context.Context, id string, lastSeen time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE listings SET last_seen_date = ? WHERE id = ?`, lastSeen, id)
	return err
}

func (s *SQLiteStore) ListListings(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	args := []interface{}{}

	if f.PropertyType != nil {
		query += " AND property_type = ?"
		args = append(args, *f.PropertyType)
	}
	if f.TransactionType != nil {
		query += " AND transaction_type = ?"
		args = append(args, *f.TransactionType)
	}
	if f.IsOwner != nil {
		query += " AND is_owner = ?"
		args = append(args, *f.IsOwner)
	}
	if f.IsAgent != nil {
		query += " AND is_agent = ?"
		args = append(args, *f.IsAgent)
	}
	if f.MinPrice != nil {
		query += " AND price >= ?"
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query += " AND price <= ?"
		args = append(args, *f.MaxPrice)
	}
	if f.HasCoords != nil {
		if *f.HasCoords {
			query += " AND latitude IS NOT NULL AND longitude IS NOT NULL"
		} else {
			query += " AND (latitude IS NULL OR longitude IS NULL)"
		}
	}
	query += " ORDER BY last_seen_date DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (s *SQLiteStore) CountListings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountListingsByPhone(ctx context.Context, phone string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE contact_phone = ?`, phone).Scan(&count)
	return count, err
}

func (s *SQLiteStore) ListingsWithoutCoords(ctx context.Context, limit int) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY last_seen_date DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (s *SQLiteStore) SetListingCoords(ctx context.Context, id string, lat, lng float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE listings SET latitude = ?, longitude = ? WHERE id = ?`, lat, lng, id)
	return err
}

func (s *SQLiteStore) CreateSnapshot(ctx context.Context, snap *models.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listing_snapshots (listing_id, seen_date, price, raw_text)
		VALUES (?, ?, ?, ?)`,
		snap.ListingID, snap.SeenDate, snap.Price, snap.RawText)
	return err
}

func (s *SQLiteStore) SnapshotsForListing(ctx context.Context, listingID string) ([]models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, seen_date, price, raw_text
		FROM listing_snapshots WHERE listing_id = ? ORDER BY seen_date`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var price sql.NullInt64
		var rawText sql.NullString
		if err := rows.Scan(&snap.ID, &snap.ListingID, &snap.SeenDate, &price, &rawText); err != nil {
			return nil, err
		}
		snap.Price = intOrNil(price)
		snap.RawText = rawText.String
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *SQLiteStore) GetAdvertiser(ctx context.Context, phone string) (*models.Advertiser, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen
		FROM advertisers WHERE phone = ?`, phone)

	a, err := scanAdvertiser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanAdvertiser(row rowScanner) (*models.Advertiser, error) {
	var a models.Advertiser
	var name, agencyName sql.NullString
	err := row.Scan(&a.Phone, &name, &a.IsOwner, &a.IsAgent, &agencyName,
		&a.TotalListings, &a.FirstSeen, &a.LastSeen)
	if err != nil {
		return nil, err
	}
	a.Name = strOrNil(name)
	a.AgencyName = strOrNil(agencyName)
	return &a, nil
}

func (s *SQLiteStore) CreateAdvertiser(ctx context.Context, a *models.Advertiser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO advertisers (phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Phone, a.Name, a.IsOwner, a.IsAgent, a.AgencyName, a.TotalListings, a.FirstSeen, a.LastSeen)
	return err
}

func (s *SQLiteStore) IncrementAdvertiser(ctx context.Context, phone string, lastSeen time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE advertisers SET total_listings = total_listings + 1, last_seen = ?
		WHERE phone = ?`, lastSeen, phone)
	return err
}

func (s *SQLiteStore) TopAdvertisers(ctx context.Context, limit int, isOwner *bool) ([]models.Advertiser, error) {
	query := `SELECT phone, name, is_owner, is_agent, agency_name, total_listings, first_seen, last_seen
		FROM advertisers`
	args := []interface{}{}
	if isOwner != nil {
		query += " WHERE is_owner = ?"
		args = append(args, *isOwner)
	}
	query += " ORDER BY total_listings DESC, phone LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advertisers []models.Advertiser
	for rows.Next() {
		a, err := scanAdvertiser(rows)
		if err != nil {
			return nil, err
		}
		advertisers = append(advertisers, *a)
	}
	return advertisers, rows.Err()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.ScrapeRun) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (started_at, status, listings_found, listings_new, listings_updated, errors_count)
		VALUES (?, ?, 0, 0, 0, 0)`,
		run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.ScrapeRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs SET finished_at = ?, status = ?, listings_found = ?,
			listings_new = ?, listings_updated = ?, errors_count = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.ListingsNew,
		run.ListingsUpdated, run.ErrorsCount, run.ErrorMessage, run.ID)
	return err
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*models.ScrapeRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, status, listings_found, listings_new,
			listings_updated, errors_count, error_message
		FROM scrape_runs ORDER BY started_at DESC, id DESC LIMIT 1`)

	var run models.ScrapeRun
	var finishedAt sql.NullTime
	var errorMessage sql.NullString
	err := row.Scan(&run.ID, &run.StartedAt, &finishedAt, &run.Status, &run.ListingsFound,
		&run.ListingsNew, &run.ListingsUpdated, &run.ErrorsCount, &errorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	run.ErrorMessage = strOrNil(errorMessage)
	return &run, nil
}

func strOrNil(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intOrNil(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatOrNil(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolOrNil(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
