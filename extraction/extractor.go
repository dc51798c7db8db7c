package extraction

import (
	"context"
	"log"

	"commprop_intel/models"
)

// BatchExtractor turns segmented blocks into structured field sets. It
// makes at most one provider call per batch; provider failure, malformed
// output, or an absent client all degrade to the deterministic fallback,
// so Extract never fails outward.
type BatchExtractor struct {
	client Client
}

// NewBatchExtractor wires a provider client. A nil client is allowed and
// means fallback-only extraction.
func NewBatchExtractor(client Client) *BatchExtractor {
	return &BatchExtractor{client: client}
}

// Extract returns exactly one ExtractedFields per input block, in input
// order. Empty input returns an empty slice without touching the
// provider.
func (e *BatchExtractor) Extract(ctx context.Context, blocks []models.RawListingBlock) []models.ExtractedFields {
	if len(blocks) == 0 {
		return []models.ExtractedFields{}
	}

	fields := make([]models.ExtractedFields, len(blocks))
	claimed := make([]bool, len(blocks))

	if e.client != nil {
		items, err := e.client.ExtractBatch(ctx, blocks)
		if err != nil {
			log.Printf("Warning: batch extraction failed, using fallback for all %d blocks: %v", len(blocks), err)
		} else {
			// Items are matched by their listing_index, never by
			// response position.
			for _, item := range items {
				idx := item.ListingIndex
				if idx < 0 || idx >= len(blocks) || claimed[idx] {
					log.Printf("Warning: provider returned unusable listing_index %d", idx)
					continue
				}
				fields[idx] = normalizeItem(item)
				claimed[idx] = true
			}
		}
	}

	// Slots no response item claimed get the deterministic treatment.
	for i := range blocks {
		if !claimed[i] {
			fields[i] = FallbackExtract(blocks[i].RawText, blocks[i].Category)
		}
	}
	return fields
}
