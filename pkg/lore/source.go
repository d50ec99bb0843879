package lore

import "time"

// SourceStatus tracks the ingestion lifecycle of one uploaded document.
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusCompleted  SourceStatus = "completed"
	SourceStatusFailed     SourceStatus = "failed"
)

// SourceRecord registers one document accepted for ingestion. Records
// are created pending, advanced by the pipeline as processing moves
// along, and only ever removed by a whole-owner reset.
type SourceRecord struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ContentType string       `json:"type"`
	Status      SourceStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}
