package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun is the persisted log row for one ingestion run.
type ScrapeRun struct {
	ID              int64      `json:"id" db:"id"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	Status          RunStatus  `json:"status" db:"status"`
	ListingsFound   int        `json:"listings_found" db:"listings_found"`
	ListingsNew     int        `json:"listings_new" db:"listings_new"`
	ListingsUpdated int        `json:"listings_updated" db:"listings_updated"`
	ErrorsCount     int        `json:"errors_count" db:"errors_count"`
	ErrorMessage    *string    `json:"error_message" db:"error_message"`
}

// RunSummary is what a completed run reports back to its caller.
type RunSummary struct {
	RunID   int64 `json:"run_id"`
	Found   int   `json:"found"`
	New     int   `json:"new"`
	Updated int   `json:"updated"`
	Errors  int   `json:"errors"`
}
