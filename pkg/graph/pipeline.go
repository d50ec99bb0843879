package graph

import (
	"context"
	"fmt"

	"github.com/fablemap/fablemap/pkg/loader"
	"github.com/fablemap/fablemap/pkg/logger"
	"github.com/fablemap/fablemap/pkg/lore"
)

// Store is the persistence surface the pipeline needs. The full storage
// layer implements more; the pipeline only loads and saves the graph and
// advances source record statuses.
type Store interface {
	LoadGraph(ctx context.Context, ownerID string) (*lore.Graph, error)
	SaveGraph(ctx context.Context, ownerID string, g *lore.Graph) error
	UpdateSourceRecordStatus(ctx context.Context, ownerID, recordID string, status lore.SourceStatus) error
}

// ProgressFunc receives human-readable status messages as a run moves
// along: once per document, once per wave, and once for the finalization
// and completion steps.
type ProgressFunc func(message string)

// RunStatus summarizes how an ingestion run ended.
type RunStatus string

const (
	// RunCompleted means every unit of every document was extracted and
	// the graph was saved.
	RunCompleted RunStatus = "completed"
	// RunPartial means the graph was saved but some units or documents
	// failed; their contributions are missing.
	RunPartial RunStatus = "partial"
	// RunFailed means the run aborted before the final graph could be
	// saved.
	RunFailed RunStatus = "failed"
)

// RunReport is the outcome of one ingestion run.
type RunReport struct {
	Status RunStatus
	// Graph is the owner's graph as of the end of the run. Set even for
	// partial runs; nil when the run failed before loading it.
	Graph *lore.Graph
	// FailedDocuments lists the source record IDs of documents that
	// produced nothing at all.
	FailedDocuments []string
	// PartialDocuments lists the source record IDs of documents where
	// some but not all units failed.
	PartialDocuments []string
	// FailedUnits counts units that failed after retries, across all
	// documents.
	FailedUnits int
}

// Run ingests the given documents into the owner's knowledge graph. The
// graph is loaded once, each document is chunked and dispatched in
// waves, results are folded in as they settle, and the graph is saved
// after every document so a crash loses at most one document's work.
// After the last document the backlink and chronology passes run and the
// final graph is saved.
//
// A document whose content cannot be read is marked failed and skipped;
// the run continues with the next document. A persistence failure aborts
// the run. The returned error is non-nil only when the report status is
// RunFailed.
func (e *Engine) Run(
	ctx context.Context,
	store Store,
	ownerID string,
	docs []loader.Document,
	progress ProgressFunc,
) (*RunReport, error) {
	if progress == nil {
		progress = func(string) {}
	}

	report := &RunReport{Status: RunCompleted}

	graph, err := store.LoadGraph(ctx, ownerID)
	if err != nil {
		report.Status = RunFailed
		return report, fmt.Errorf("failed to load knowledge graph: %w", err)
	}
	graph.Normalize()
	report.Graph = graph

	for i, doc := range docs {
		progress(fmt.Sprintf("Reading %s (%d of %d)", doc.Name, i+1, len(docs)))
		e.setStatus(ctx, store, ownerID, doc.ID, lore.SourceStatusProcessing)

		text, err := doc.GetText(ctx)
		if err != nil {
			logger.Error("failed to read document", "document", doc.Name, "error", err)
			report.FailedDocuments = append(report.FailedDocuments, doc.ID)
			e.setStatus(ctx, store, ownerID, doc.ID, lore.SourceStatusFailed)
			continue
		}

		units := Chunk(text, e.chunkSize)
		progress(fmt.Sprintf("Analyzing %s in %d units", doc.Name, len(units)))

		failed, err := e.processDocument(ctx, graph, doc.Name, doc.ID, units, progress)
		report.FailedUnits += failed
		if err != nil {
			report.Status = RunFailed
			return report, fmt.Errorf("ingestion cancelled: %w", err)
		}

		switch {
		case len(units) > 0 && failed == len(units):
			report.FailedDocuments = append(report.FailedDocuments, doc.ID)
			e.setStatus(ctx, store, ownerID, doc.ID, lore.SourceStatusFailed)
		case failed > 0:
			report.PartialDocuments = append(report.PartialDocuments, doc.ID)
			e.setStatus(ctx, store, ownerID, doc.ID, lore.SourceStatusCompleted)
		default:
			e.setStatus(ctx, store, ownerID, doc.ID, lore.SourceStatusCompleted)
		}

		if err := store.SaveGraph(ctx, ownerID, graph); err != nil {
			report.Status = RunFailed
			return report, fmt.Errorf("failed to save knowledge graph: %w", err)
		}
	}

	progress("Finalizing knowledge graph")
	BuildBacklinks(graph)
	AssignChronology(graph)

	progress("Saving knowledge graph")
	if err := store.SaveGraph(ctx, ownerID, graph); err != nil {
		report.Status = RunFailed
		return report, fmt.Errorf("failed to save knowledge graph: %w", err)
	}

	if report.FailedUnits > 0 || len(report.FailedDocuments) > 0 {
		report.Status = RunPartial
	}
	progress("Analysis complete")
	return report, nil
}

// setStatus advances a source record; a status update failing is logged
// but never aborts a run, the graph itself is the source of truth.
func (e *Engine) setStatus(
	ctx context.Context,
	store Store,
	ownerID, recordID string,
	status lore.SourceStatus,
) {
	if err := store.UpdateSourceRecordStatus(ctx, ownerID, recordID, status); err != nil {
		logger.Warn("failed to update source record", "record", recordID, "status", status, "error", err)
	}
}
