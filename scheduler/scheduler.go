package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"commprop_intel/config"
	"commprop_intel/models"
)

// Runner starts one ingestion pass over the trailing daysBack dates.
type Runner interface {
	Run(ctx context.Context, daysBack int) (*models.RunSummary, error)
}

// Triggerable allows workers to be nudged outside their own cadence
type Triggerable interface {
	Trigger()
}

type Scheduler struct {
	cfg    *config.Config
	runner Runner
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}

	backfillWorker Triggerable
}

func New(cfg *config.Config, runner Runner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

// SetBackfillWorker registers the geocode worker to poke after each
// scheduled run lands fresh rows
func (s *Scheduler) SetBackfillWorker(w Triggerable) {
	s.backfillWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runOnce(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runOnce(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, runs must be triggered manually")
	}

	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.runner.Run(ctx, s.cfg.Scraper.DaysBack)
	if err != nil {
		log.Printf("Scheduled run error: %v", err)
		return
	}

	log.Printf("Scheduled run complete: %d found, %d new, %d updated", summary.Found, summary.New, summary.Updated)

	if s.backfillWorker != nil {
		s.backfillWorker.Trigger()
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
