package storage

import (
	"context"
	"time"

	"lawscraper/pkg/models"
)

// DocumentStore tracks per-document scrape state across runs so re-runs skip
// documents already captured successfully and retry past failures.
type DocumentStore interface {
	// MarkPending atomically claims a document URL. It returns false when the
	// URL already has an entry of any status, which makes it the dedup gate
	// for concurrent workers.
	MarkPending(normalizedURL string, docType models.DocumentType) (bool, error)

	// CheckStatus returns the stored entry for a URL. A missing key yields
	// DocStatusNotFound with a nil entry and no error.
	CheckStatus(normalizedURL string) (models.DocStatus, *models.DocEntry, error)

	// UpdateStatus overwrites the entry for a URL with a terminal outcome.
	UpdateStatus(normalizedURL string, entry *models.DocEntry) error

	// Count returns the number of tracked documents.
	Count() int

	// RunGC runs the store's garbage collection loop until ctx is cancelled.
	RunGC(ctx context.Context, interval time.Duration)

	Close() error
}
