package scraper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"commprop_intel/models"
	"commprop_intel/services"
	"commprop_intel/storage"
)

type PipelineState string

const (
	StateIdle           PipelineState = "idle"
	StateNavigatingDate PipelineState = "navigating_date"
	StateParsingDate    PipelineState = "parsing_date"
	StateCompleted      PipelineState = "completed"
	StateFailed         PipelineState = "failed"
)

// Extractor is the batched field-extraction stage the pipeline feeds.
type Extractor interface {
	Extract(ctx context.Context, blocks []models.RawListingBlock) []models.ExtractedFields
}

// Archiver stores raw fetched pages for later replay.
type Archiver interface {
	ArchivePage(ctx context.Context, scrapeDate time.Time, markup string) (string, error)
}

// Pipeline drives one ingestion run end to end: walk the date dropdown,
// segment each page, extract fields in one batch, then merge every block
// into the store.
type Pipeline struct {
	navigator Navigator
	segmenter *Segmenter
	extractor Extractor
	ingest    *services.IngestService
	store     storage.Store
	archiver  Archiver
	delay     time.Duration

	mu    sync.Mutex
	state PipelineState
}

// NewPipeline creates a new Pipeline with the default 1s inter-date delay
func NewPipeline(navigator Navigator, extractor Extractor, ingest *services.IngestService, store storage.Store) *Pipeline {
	return &Pipeline{
		navigator: navigator,
		segmenter: NewSegmenter(nil),
		extractor: extractor,
		ingest:    ingest,
		store:     store,
		delay:     time.Second,
		state:     StateIdle,
	}
}

// SetArchiver injects optional page archival
func (p *Pipeline) SetArchiver(a Archiver) {
	p.archiver = a
}

// SetDelay overrides the pause between date fetches
func (p *Pipeline) SetDelay(d time.Duration) {
	p.delay = d
}

func (p *Pipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s PipelineState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run ingests the last daysBack dates, newest first, and records the whole
// attempt as one scrape_runs row. Per-date and per-block failures are
// logged and counted without aborting the run; only losing the context or
// the run row itself fails it.
func (p *Pipeline) Run(ctx context.Context, daysBack int) (*models.RunSummary, error) {
	if daysBack <= 0 {
		daysBack = 1
	}

	run := &models.ScrapeRun{StartedAt: time.Now(), Status: models.RunStatusRunning}
	runID, err := p.store.CreateRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	run.ID = runID

	stats := &services.ProcessStats{}
	found := 0

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		run.ListingsFound = found
		run.ListingsNew = stats.New
		run.ListingsUpdated = stats.Updated
		run.ErrorsCount = stats.Errors
		// Finalize with a fresh context so a cancelled run still lands.
		if err := p.store.UpdateRun(context.Background(), run); err != nil {
			log.Printf("Warning: failed to finalize run %d: %v", runID, err)
		}
	}()
	defer p.navigator.Close()

	dates := datesBack(time.Now(), daysBack)
	var blocks []models.RawListingBlock

	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(run, err)
		}
		label := date.Format("2006-01-02")

		p.setState(StateNavigatingDate)
		log.Printf("Fetching listings for %s", label)
		markup, err := p.navigator.FetchDate(ctx, date)
		if err == ErrNoResults {
			log.Printf("No listings for %s", label)
		} else if err != nil {
			log.Printf("Error fetching %s: %v", label, err)
			stats.Errors++
		} else {
			if p.archiver != nil {
				if url, aerr := p.archiver.ArchivePage(ctx, date, markup); aerr != nil {
					log.Printf("Warning: failed to archive page for %s: %v", label, aerr)
				} else {
					log.Printf("Archived %s page at %s", label, url)
				}
			}

			p.setState(StateParsingDate)
			dateBlocks, serr := p.segmenter.SegmentMarkup(markup, label)
			if serr != nil {
				log.Printf("Error parsing %s: %v", label, serr)
				stats.Errors++
			} else {
				log.Printf("Date %s: %d listing blocks", label, len(dateBlocks))
				blocks = append(blocks, dateBlocks...)
			}
		}

		if i < len(dates)-1 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return nil, p.fail(run, ctx.Err())
			}
		}
	}

	found = len(blocks)
	log.Printf("Run %d: %d blocks collected across %d dates", runID, found, len(dates))

	p.setState(StateParsingDate)
	var fieldsList []models.ExtractedFields
	if len(blocks) > 0 {
		fieldsList = p.extractor.Extract(ctx, blocks)
	}

	runDate := time.Now()
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(run, err)
		}
		var fields *models.ExtractedFields
		if i < len(fieldsList) {
			fields = &fieldsList[i]
		}
		result, err := p.ingest.ProcessBlock(ctx, block, fields, runDate)
		if err != nil {
			log.Printf("Error processing block %s: %v", block.ID, err)
			stats.Errors++
			continue
		}
		stats.Aggregate(result)
	}

	run.Status = models.RunStatusCompleted
	p.setState(StateCompleted)
	log.Printf("Run %d completed: %d found, %d new, %d updated, %d errors",
		runID, found, stats.New, stats.Updated, stats.Errors)

	return &models.RunSummary{
		RunID:   runID,
		Found:   found,
		New:     stats.New,
		Updated: stats.Updated,
		Errors:  stats.Errors,
	}, nil
}

func (p *Pipeline) fail(run *models.ScrapeRun, err error) error {
	run.Status = models.RunStatusFailed
	msg := err.Error()
	run.ErrorMessage = &msg
	p.setState(StateFailed)
	return err
}

// datesBack lists the daysBack dates before now, newest first. The site
// publishes one page per calendar date, so the walk starts at yesterday.
func datesBack(now time.Time, daysBack int) []time.Time {
	dates := make([]time.Time, 0, daysBack)
	for i := 1; i <= daysBack; i++ {
		dates = append(dates, models.DateOnly(now.AddDate(0, 0, -i)))
	}
	return dates
}
