package models

import (
	"time"
)

// Listing is the persisted record for one classified ad, keyed by its
// content-derived id. Created once per id and only ever updated in place.
type Listing struct {
	ID                string    `json:"id" db:"id"`
	PropertyName      *string   `json:"property_name" db:"property_name"`
	Address           *string   `json:"address" db:"address"`
	Latitude          *float64  `json:"latitude" db:"latitude"`
	Longitude         *float64  `json:"longitude" db:"longitude"`
	PropertyType      *string   `json:"property_type" db:"property_type"`
	PropertySubtype   *string   `json:"property_subtype" db:"property_subtype"`
	TransactionType   *string   `json:"transaction_type" db:"transaction_type"`
	Price             *int      `json:"price" db:"price"`
	PriceType         *string   `json:"price_type" db:"price_type"`
	GfaSqft           *int      `json:"gfa_sqft" db:"gfa_sqft"`
	LeaseType         *string   `json:"lease_type" db:"lease_type"`
	LeaseBalanceYears *int      `json:"lease_balance_years" db:"lease_balance_years"`
	FloorLevel        *string   `json:"floor_level" db:"floor_level"`
	Features          []string  `json:"features" db:"features"`
	ContactName       *string   `json:"contact_name" db:"contact_name"`
	ContactPhone      *string   `json:"contact_phone" db:"contact_phone"`
	IsOwner           bool      `json:"is_owner" db:"is_owner"`
	IsAgent           bool      `json:"is_agent" db:"is_agent"`
	AgencyName        *string   `json:"agency_name" db:"agency_name"`
	CobrokeAllowed    *bool     `json:"cobroke_allowed" db:"cobroke_allowed"`
	RawText           string    `json:"raw_text" db:"raw_text"`
	Category          *string   `json:"category" db:"category"`
	FirstSeenDate     time.Time `json:"first_seen_date" db:"first_seen_date"`
	LastSeenDate      time.Time `json:"last_seen_date" db:"last_seen_date"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// DateOnly truncates a timestamp to midnight UTC. Sighting dates carry
// day resolution only.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
