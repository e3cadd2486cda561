package models

import "time"

// ExtractionRun records one upload-and-extract invocation. Records belong to
// exactly one run and are immutable once the run is stored.
type ExtractionRun struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	SourceName string    `json:"source_name"` // uploaded filename, informational
	OrderCount int       `json:"order_count"`
}
