package store

import (
	"context"

	"github.com/fablemap/fablemap/pkg/lore"
)

// Store persists knowledge graphs and source records per owner. One
// owner has at most one graph; source records accumulate until the
// owner resets.
type Store interface {
	// LoadGraph returns the owner's graph, or an empty graph when the
	// owner has none yet.
	LoadGraph(ctx context.Context, ownerID string) (*lore.Graph, error)
	// SaveGraph upserts the owner's graph as one document.
	SaveGraph(ctx context.Context, ownerID string, g *lore.Graph) error

	AppendSourceRecords(ctx context.Context, ownerID string, records []lore.SourceRecord) error
	ListSourceRecords(ctx context.Context, ownerID string) ([]lore.SourceRecord, error)
	UpdateSourceRecordStatus(ctx context.Context, ownerID, recordID string, status lore.SourceStatus) error

	// ResetOwner deletes the owner's graph and all source records.
	ResetOwner(ctx context.Context, ownerID string) error
}
