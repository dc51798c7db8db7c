package models

import "time"

// Snapshot records one resighting of an existing listing. Append-only;
// the price history behind trend queries.
type Snapshot struct {
	ID        int64     `json:"id" db:"id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	SeenDate  time.Time `json:"seen_date" db:"seen_date"`
	Price     *int      `json:"price" db:"price"`
	RawText   string    `json:"raw_text" db:"raw_text"`
}
