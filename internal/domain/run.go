package domain

import "time"

// Run is one ingestion run's ledger row, keyed by StartedAt. The pointer
// fields stay NULL until the run finalizes; a run that crashed mid-flight
// leaves them NULL forever. A nil ResumeCursor on a completed run means
// the historical sweep reached the end of the feed.
type Run struct {
	StartedAt       time.Time `db:"started_at" json:"startedAt"`
	DurationSeconds *float64  `db:"duration_seconds" json:"durationSeconds"`
	ItemsRetrieved  *int      `db:"items_retrieved" json:"itemsRetrieved"`
	ResumeCursor    *string   `db:"resume_cursor" json:"resumeCursor"`
}

// RunStats holds counters for a single ingestion run.
type RunStats struct {
	StartedAt      time.Time
	RecentPages    int
	HistoryPages   int
	ItemsRetrieved int
	FetchFaults    int
	StorageFaults  int
	Published      int
	Duration       time.Duration
	ResumeCursor   *string
}
