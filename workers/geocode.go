package workers

import (
	"context"
	"log"
	"time"

	"commprop_intel/geocoding"
	"commprop_intel/models"
	"commprop_intel/storage"
)

// GeocodeWorker backfills coordinates for listings that ingestion could
// not place, picking up gazetteer overlays and cache entries added since.
type GeocodeWorker struct {
	store    storage.Store
	resolver *geocoding.Resolver
	trigger  chan struct{}
}

// NewGeocodeWorker creates a new geocode backfill worker
func NewGeocodeWorker(store storage.Store, resolver *geocoding.Resolver) *GeocodeWorker {
	return &GeocodeWorker{
		store:    store,
		resolver: resolver,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate pass. Never blocks; a pass already
// pending absorbs the request.
func (w *GeocodeWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run starts the backfill loop
func (w *GeocodeWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Geocode worker stopping")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx, batchSize)
		case <-w.trigger:
			w.ProcessBatch(ctx, batchSize)
		}
	}
}

// ProcessBatch resolves up to batchSize unplaced listings and reports how
// many gained coordinates. Terms that stay unresolved are cheap to retry
// next pass because the resolver remembers misses.
func (w *GeocodeWorker) ProcessBatch(ctx context.Context, batchSize int) int {
	listings, err := w.store.ListingsWithoutCoords(ctx, batchSize)
	if err != nil {
		log.Printf("Geocode: query error: %v", err)
		return 0
	}
	if len(listings) == 0 {
		return 0
	}

	log.Printf("Geocode: backfilling %d listings", len(listings))

	resolved := 0
	for _, l := range listings {
		if ctx.Err() != nil {
			return resolved
		}

		fields := &models.ExtractedFields{PropertyName: l.PropertyName, Address: l.Address}
		pt := w.resolver.Resolve(ctx, geocoding.CandidateTerms(fields, l.RawText))
		if pt == nil {
			continue
		}

		if err := w.store.SetListingCoords(ctx, l.ID, pt.Lat, pt.Lng); err != nil {
			log.Printf("Geocode: failed to update %s: %v", l.ID, err)
			continue
		}
		resolved++
	}

	log.Printf("Geocode: resolved %d of %d", resolved, len(listings))
	return resolved
}
