package storage

import (
	"context"
	"time"

	"commprop_intel/models"
)

// ListingFilter narrows ListListings. Nil fields are not applied.
type ListingFilter struct {
	PropertyType    *string
	TransactionType *string
	IsOwner         *bool
	IsAgent         *bool
	MinPrice        *int
	MaxPrice        *int
	HasCoords       *bool
}

// Store is the persistence surface the pipeline writes and the query
// layer reads. Lookups return (nil, nil) when the row does not exist.
type Store interface {
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	CreateListing(ctx context.Context, l *models.Listing) error
	TouchListing(ctx context.Context, id string, lastSeen time.Time) error
	ListListings(ctx context.Context, f ListingFilter) ([]models.Listing, error)
	CountListings(ctx context.Context) (int, error)
	CountListingsByPhone(ctx context.Context, phone string) (int, error)
	ListingsWithoutCoords(ctx context.Context, limit int) ([]models.Listing, error)
	SetListingCoords(ctx context.Context, id string, lat, lng float64) error

	CreateSnapshot(ctx context.Context, snap *models.Snapshot) error
	SnapshotsForListing(ctx context.Context, listingID string) ([]models.Snapshot, error)

	GetAdvertiser(ctx context.Context, phone string) (*models.Advertiser, error)
	CreateAdvertiser(ctx context.Context, a *models.Advertiser) error
	IncrementAdvertiser(ctx context.Context, phone string, lastSeen time.Time) error
	TopAdvertisers(ctx context.Context, limit int, isOwner *bool) ([]models.Advertiser, error)

	CreateRun(ctx context.Context, run *models.ScrapeRun) (int64, error)
	UpdateRun(ctx context.Context, run *models.ScrapeRun) error
	LatestRun(ctx context.Context) (*models.ScrapeRun, error)

	Close() error
}
