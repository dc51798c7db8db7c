package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commprop_intel/config"
	"commprop_intel/extraction"
	"commprop_intel/geocoding"
	"commprop_intel/httputil"
	"commprop_intel/logging"
	"commprop_intel/scheduler"
	"commprop_intel/scraper"
	"commprop_intel/services"
	"commprop_intel/storage"
	"commprop_intel/workers"
)

var (
	scrapeNow = flag.Bool("scrape", false, "Run one ingestion pass and exit")
	daysBack  = flag.Int("days", 0, "Days back to walk (overrides SCRAPE_DAYS_BACK)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else if logFile != nil {
		defer logFile.Close()
	}

	log.Println("Starting commprop_intel...")

	ctx := context.Background()

	// Store: Postgres when a DSN is configured, SQLite otherwise
	var store storage.Store
	if cfg.Database.URL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		store = pgStore
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))
	} else {
		sqliteStore, err := storage.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to open SQLite: %v", err)
		}
		store = sqliteStore
		log.Printf("SQLite database: %s", cfg.Database.Path)
	}
	defer store.Close()

	clients := httputil.NewClients()

	// Extraction: provider-backed when a key is present, deterministic
	// fallback only otherwise
	var providerClient extraction.Client
	if cfg.OpenAI.APIKey != "" {
		c, err := extraction.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, clients.Extraction)
		if err != nil {
			log.Fatalf("Failed to build extraction client: %v", err)
		}
		providerClient = c
		log.Printf("Extraction model: %s", cfg.OpenAI.Model)
	} else {
		log.Println("Warning: OPENAI_API_KEY not set, using fallback extraction only")
	}
	extractor := extraction.NewBatchExtractor(providerClient)

	// Geocoding tiers: gazetteer, file cache, OneMap
	cache := geocoding.NewCache(geocoding.NewFileStore(cfg.Geocoding.CachePath))
	if err := cache.Load(); err != nil {
		log.Printf("Warning: could not load geocode cache: %v", err)
	}
	resolver := geocoding.NewResolver(cache, geocoding.NewOneMapClient(clients.Geocoding))
	if cfg.Geocoding.GazetteerPath != "" {
		entries, err := geocoding.LoadGazetteerFile(cfg.Geocoding.GazetteerPath)
		if err != nil {
			log.Printf("Warning: could not load gazetteer overlay: %v", err)
		} else {
			resolver.ExtendGazetteer(entries)
			log.Printf("Gazetteer overlay: %d entries from %s", len(entries), cfg.Geocoding.GazetteerPath)
		}
	}

	ingest := services.NewIngestService(store, resolver)
	navigator := scraper.NewBrowserNavigator(cfg.Scraper.Headless)

	pipeline := scraper.NewPipeline(navigator, extractor, ingest, store)
	pipeline.SetDelay(time.Duration(cfg.Scraper.DelayMS) * time.Millisecond)

	if cfg.Archive.Bucket != "" {
		archiver, err := storage.NewPageArchiver(ctx, storage.ArchiveConfig{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			log.Printf("Warning: page archiver disabled: %v", err)
		} else {
			pipeline.SetArchiver(archiver)
			log.Printf("Archiving pages to %s", cfg.Archive.Bucket)
		}
	}

	days := cfg.Scraper.DaysBack
	if *daysBack > 0 {
		days = *daysBack
	}

	// Handle one-shot mode
	if *scrapeNow {
		log.Printf("Running ingestion over %d day(s)...", days)
		summary, err := pipeline.Run(ctx, days)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Ingestion complete: %d found, %d new, %d updated, %d errors",
			summary.Found, summary.New, summary.Updated, summary.Errors)
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg.Scraper.DaysBack = days

	sched := scheduler.New(cfg, pipeline)

	geocodeWorker := workers.NewGeocodeWorker(store, resolver)
	sched.SetBackfillWorker(geocodeWorker)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go geocodeWorker.Run(ctx, 25, 15*time.Minute) // batch of 25 every 15 min
	log.Println("Geocode worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString hides the password part of a DSN for logging
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
