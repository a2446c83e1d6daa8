package domain

import "time"

// Mode identifies what triggered a scrape cycle.
type Mode string

const (
	ModeScheduled Mode = "scheduled"
	ModeOnDemand  Mode = "on_demand"
)

// CycleStats holds statistics about a scrape cycle.
type CycleStats struct {
	Mode        Mode          `json:"mode"`
	Fetched     int           `json:"fetched"`
	New         int           `json:"new"`
	Duplicates  int           `json:"duplicates"`
	Errors      int           `json:"errors"`
	Published   int           `json:"published"`
	Skipped     bool          `json:"skipped"` // another cycle held the lock
	FetchFailed bool          `json:"fetch_failed"`
	Duration    time.Duration `json:"duration"`
}

// ScrapeState is the per-source bookkeeping kept across cycles.
type ScrapeState struct {
	ID            int64     `db:"id" json:"-"`
	SourceID      string    `db:"source_id" json:"source_id"`
	LastScrapedAt time.Time `db:"last_scraped_at" json:"last_scraped_at"`
	LastMode      Mode      `db:"last_mode" json:"last_mode"`
	TotalSaved    int64     `db:"total_saved" json:"total_saved"`
}
