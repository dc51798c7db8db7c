package models

import "time"

// Advertiser aggregates every listing posted under one contact phone.
// TotalListings is a running counter incremented on each newly created
// listing, not a recomputed count.
type Advertiser struct {
	Phone         string    `json:"phone" db:"phone"`
	Name          *string   `json:"name" db:"name"`
	IsOwner       bool      `json:"is_owner" db:"is_owner"`
	IsAgent       bool      `json:"is_agent" db:"is_agent"`
	AgencyName    *string   `json:"agency_name" db:"agency_name"`
	TotalListings int       `json:"total_listings" db:"total_listings"`
	FirstSeen     time.Time `json:"first_seen" db:"first_seen"`
	LastSeen      time.Time `json:"last_seen" db:"last_seen"`
}
