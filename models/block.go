package models

// RawListingBlock is one candidate ad segmented out of a date's page text.
// ID is content-addressed (hash of leading text + scrape date), so the same
// ad re-scraped on the same date resolves to the same block. Blocks live
// only for the duration of a run.
type RawListingBlock struct {
	ID         string `json:"id"`
	RawText    string `json:"raw_text"`
	Category   string `json:"category,omitempty"`
	ScrapeDate string `json:"scrape_date"`
}
