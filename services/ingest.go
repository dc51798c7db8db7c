package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"commprop_intel/geocoding"
	"commprop_intel/models"
	"commprop_intel/storage"
)

// IngestService merges extracted listing blocks into the store
type IngestService struct {
	store    storage.Store
	resolver *geocoding.Resolver

	mu         sync.Mutex
	phoneLocks map[string]*sync.Mutex
}

// NewIngestService creates a new IngestService
func NewIngestService(store storage.Store, resolver *geocoding.Resolver) *IngestService {
	return &IngestService{
		store:      store,
		resolver:   resolver,
		phoneLocks: make(map[string]*sync.Mutex),
	}
}

// ProcessResult contains the outcome of processing one block
type ProcessResult struct {
	ListingID string
	IsNew     bool
}

// ProcessBlock merges one (block, fields) pair into the store. Re-ingesting
// a block that is already known records a resighting instead of a new row,
// so a rerun over the same dates is safe.
func (s *IngestService) ProcessBlock(ctx context.Context, block models.RawListingBlock, fields *models.ExtractedFields, runDate time.Time) (*ProcessResult, error) {
	if fields == nil {
		fields = &models.ExtractedFields{}
	}
	result := &ProcessResult{ListingID: block.ID}
	seenDate := models.DateOnly(runDate)

	// 1. Look up the listing by its content-derived id
	existing, err := s.store.GetListing(ctx, block.ID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	// 2. Known listing: bump last_seen and record a snapshot
	if existing != nil {
		if err := s.store.TouchListing(ctx, block.ID, seenDate); err != nil {
			return nil, fmt.Errorf("touch listing: %w", err)
		}

		snap := &models.Snapshot{
			ListingID: block.ID,
			SeenDate:  seenDate,
			Price:     fields.Price,
			RawText:   block.RawText,
		}
		if err := s.store.CreateSnapshot(ctx, snap); err != nil {
			log.Printf("Warning: failed to record snapshot for %s: %v", block.ID, err)
		}
		return result, nil
	}

	// 3. New listing: resolve coordinates, create, upsert its advertiser
	firstSeen := seenDate
	if parsed, perr := time.Parse("2006-01-02", block.ScrapeDate); perr == nil {
		firstSeen = parsed
	}

	var lat, lng *float64
	if s.resolver != nil {
		terms := geocoding.CandidateTerms(fields, block.RawText)
		if pt := s.resolver.Resolve(ctx, terms); pt != nil {
			lat = &pt.Lat
			lng = &pt.Lng
		}
	}

	var category *string
	if block.Category != "" {
		category = &block.Category
	}

	listing := &models.Listing{
		ID:                block.ID,
		PropertyName:      fields.PropertyName,
		Address:           fields.Address,
		Latitude:          lat,
		Longitude:         lng,
		PropertyType:      fields.PropertyType,
		PropertySubtype:   fields.PropertySubtype,
		TransactionType:   fields.TransactionType,
		Price:             fields.Price,
		PriceType:         fields.PriceType,
		GfaSqft:           fields.GfaSqft,
		LeaseType:         fields.LeaseType,
		LeaseBalanceYears: fields.LeaseBalanceYears,
		FloorLevel:        fields.FloorLevel,
		Features:          fields.Features,
		ContactName:       fields.ContactName,
		ContactPhone:      fields.ContactPhone,
		IsOwner:           fields.IsOwner,
		IsAgent:           fields.IsAgent,
		AgencyName:        fields.AgencyName,
		CobrokeAllowed:    fields.CobrokeAllowed,
		RawText:           block.RawText,
		Category:          category,
		FirstSeenDate:     firstSeen,
		LastSeenDate:      seenDate,
		CreatedAt:         time.Now(),
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	result.IsNew = true

	if fields.ContactPhone != nil {
		if err := s.upsertAdvertiser(ctx, fields, seenDate); err != nil {
			log.Printf("Warning: failed to upsert advertiser %s: %v", *fields.ContactPhone, err)
		}
	}

	return result, nil
}

// upsertAdvertiser creates the advertiser on first sight or increments its
// listing counter. Updates for one phone are serialized so concurrent
// processing cannot lose increments.
func (s *IngestService) upsertAdvertiser(ctx context.Context, fields *models.ExtractedFields, seenDate time.Time) error {
	phone := *fields.ContactPhone
	lock := s.phoneLock(phone)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.GetAdvertiser(ctx, phone)
	if err != nil {
		return fmt.Errorf("get advertiser: %w", err)
	}
	if existing != nil {
		return s.store.IncrementAdvertiser(ctx, phone, seenDate)
	}

	advertiser := &models.Advertiser{
		Phone:         phone,
		Name:          fields.ContactName,
		IsOwner:       fields.IsOwner,
		IsAgent:       fields.IsAgent,
		AgencyName:    fields.AgencyName,
		TotalListings: 1,
		FirstSeen:     seenDate,
		LastSeen:      seenDate,
	}
	return s.store.CreateAdvertiser(ctx, advertiser)
}

func (s *IngestService) phoneLock(phone string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.phoneLocks[phone]
	if !ok {
		lock = &sync.Mutex{}
		s.phoneLocks[phone] = lock
	}
	return lock
}

// ProcessStats tracks aggregate statistics for a scrape run
type ProcessStats struct {
	Found   int
	New     int
	Updated int
	Errors  int
}

// Aggregate adds a ProcessResult to the stats
func (s *ProcessStats) Aggregate(r *ProcessResult) {
	s.Found++
	if r.IsNew {
		s.New++
	} else {
		s.Updated++
	}
}
