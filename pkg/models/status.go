package models

import "time"

// DocStatus is the terminal state of a document URL in the state store.
type DocStatus string

const (
	DocStatusSuccess  DocStatus = "success"
	DocStatusFailure  DocStatus = "failure"
	DocStatusPending  DocStatus = "pending"
	DocStatusNotFound DocStatus = "not_found"
	DocStatusDBError  DocStatus = "db_error"
)

// DocEntry is the value stored per normalized document URL in the state
// store. It records the outcome of the last scrape attempt so re-runs can
// skip documents already captured successfully.
type DocEntry struct {
	Status      DocStatus    `json:"status"`
	Type        DocumentType `json:"document_type"`
	ErrorType   string       `json:"error_type,omitempty"` // Error category (on failure)
	ProcessedAt time.Time    `json:"processed_at,omitempty"`
	LastAttempt time.Time    `json:"last_attempt"`
}
