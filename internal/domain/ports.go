package domain

import (
	"context"
	"time"
)

type CatalogRepository interface {
	// Write paths
	ResetCatalog(ctx context.Context) error
	UpsertProperty(ctx context.Context, p Property) error
	RecordRun(ctx context.Context, run RunSummary) error

	// Read paths
	GetProperty(ctx context.Context, id string) (Property, error)
	ListProperties(ctx context.Context, q CatalogQuery) (CatalogPage, error)
	Stats(ctx context.Context) (CatalogStats, error)
}

// ListingSource materializes the raw listing sequence for one run, plus the
// names of the feed batches it came from.
type ListingSource interface {
	Load(ctx context.Context) ([]RawListing, []string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

type CatalogQuery struct {
	Classification string
	City           string
	Limit          int
}

type CatalogPage struct {
	Items []Property `json:"items"`
}

type CatalogStats struct {
	Total            int            `json:"total"`
	ByClassification map[string]int `json:"by_classification"`
	DiscardReasons   map[string]int `json:"discard_reasons"`
	LastRun          *RunSummary    `json:"last_run,omitempty"`
}

// RunSummary journals one pipeline run.
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	FeedFiles  int       `json:"feed_files"`
	Listings   int       `json:"listings"`
	Properties int       `json:"properties"`
	Usable     int       `json:"usable"`
	Flagged    int       `json:"flagged"`
	Discarded  int       `json:"discarded"`
	Failed     int       `json:"failed"`
}
