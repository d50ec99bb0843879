package graph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fablemap/fablemap/internal/util"
	"github.com/fablemap/fablemap/pkg/logger"
	"github.com/fablemap/fablemap/pkg/lore"
)

type unitResult struct {
	unit     int
	incoming *lore.Graph
	err      error
}

// processDocument runs extraction over all units of one document in
// waves of at most e.concurrency requests. Each wave waits for every
// unit in it to settle before the next wave starts; a failed unit is
// recorded and never cancels its siblings. Settled results are folded
// into graph in unit order, so later waves see the entities earlier
// waves discovered and their prompts list the updated IDs.
//
// Returns the number of units that still failed after retries. The error
// is non-nil only when ctx was cancelled mid-run.
func (e *Engine) processDocument(
	ctx context.Context,
	graph *lore.Graph,
	docName string,
	sourceID string,
	units []string,
	progress ProgressFunc,
) (int, error) {
	failed := 0
	totalWaves := (len(units) + e.concurrency - 1) / e.concurrency

	for start := 0; start < len(units); start += e.concurrency {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		end := min(start+e.concurrency, len(units))
		wave := start/e.concurrency + 1
		progress(fmt.Sprintf("Analyzing %s: wave %d of %d", docName, wave, totalWaves))

		prompt := systemPrompt(graph)
		results := make([]unitResult, end-start)

		g := errgroup.Group{}
		g.SetLimit(e.concurrency)
		for i := start; i < end; i++ {
			idx := i
			g.Go(func() error {
				incoming, err := util.RetryWithContext(ctx, e.retry, func(ctx context.Context) (*lore.Graph, error) {
					return extractFromUnit(ctx, e.client, prompt, units[idx], sourceID)
				})
				results[idx-start] = unitResult{unit: idx, incoming: incoming, err: err}
				return nil
			})
		}
		g.Wait()

		for _, res := range results {
			if res.err != nil {
				failed++
				logger.Warn(
					"unit extraction failed",
					"document", docName,
					"unit", res.unit+1,
					"units", len(units),
					"error", res.err,
				)
				continue
			}
			Merge(graph, res.incoming)
		}
	}

	return failed, ctx.Err()
}
