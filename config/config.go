package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultCron fires the daily ingestion run at 02:00, after the site has
// the previous day's ads in place.
const defaultCron = "0 2 * * *"

type Config struct {
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Scraper   ScraperConfig
	Geocoding GeocodingConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	LogPath   string
}

type DatabaseConfig struct {
	// URL is a Postgres DSN. When empty the SQLite store at Path is used.
	URL  string
	Path string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type ScraperConfig struct {
	Headless bool
	DelayMS  int
	DaysBack int
}

type GeocodingConfig struct {
	CachePath     string
	GazetteerPath string
}

type ArchiveConfig struct {
	// Bucket empty disables page archival.
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:  os.Getenv("DATABASE_URL"),
			Path: getEnv("DB_PATH", "listings.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Scraper: ScraperConfig{
			Headless: getEnvBool("HEADLESS", true),
			DelayMS:  getEnvInt("SCRAPE_DELAY_MS", 1000),
			DaysBack: getEnvInt("SCRAPE_DAYS_BACK", 1),
		},
		Geocoding: GeocodingConfig{
			CachePath:     getEnv("GEOCODE_CACHE_PATH", "geocode_cache.json"),
			GazetteerPath: os.Getenv("GAZETTEER_PATH"),
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_BUCKET"),
			Region:          getEnv("ARCHIVE_REGION", "ap-southeast-1"),
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		LogPath: getEnv("LOG_PATH", "daemon.log"),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPE_INTERVAL %q: %w", interval, err)
		}
		cfg.Scheduler.Interval = d
	}

	// Default to the daily run only when nothing else is configured, so an
	// interval-only setup does not also get the cron schedule.
	if cfg.Scheduler.Cron == "" && cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Cron = defaultCron
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}
