package graph

import (
	"time"

	"github.com/fablemap/fablemap/internal/util"
	"github.com/fablemap/fablemap/pkg/ai"
)

// Engine runs the full ingestion pipeline: it splits source documents
// into units, dispatches extraction requests in bounded waves, folds the
// results into the owner's knowledge graph and finishes with the
// backlink and chronology passes.
//
// An Engine should be created using NewEngine. It is safe for concurrent
// use as long as no two runs target the same owner.
type Engine struct {
	client      ai.Client
	chunkSize   int
	concurrency int
	retry       util.Backoff
}

// NewEngineParams defines the configuration parameters for creating a
// new Engine.
//
// Client is the extraction service the engine sends units to.
// ChunkSize is the maximum unit width in runes.
// Concurrency caps how many extraction requests run in one wave.
// MaxRetries and RetryBaseDelay configure the per-unit retry policy.
type NewEngineParams struct {
	Client         ai.Client
	ChunkSize      int
	Concurrency    int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

const (
	defaultChunkSize   = 40000
	defaultConcurrency = 5
)

// NewEngine creates and returns a new Engine configured with the
// provided parameters. Zero values fall back to the defaults: 40000-rune
// units, 5 concurrent requests, 3 attempts with a 2s base delay.
func NewEngine(params NewEngineParams) *Engine {
	e := &Engine{
		client:      params.Client,
		chunkSize:   params.ChunkSize,
		concurrency: params.Concurrency,
		retry: util.Backoff{
			Attempts:  params.MaxRetries,
			BaseDelay: params.RetryBaseDelay,
		},
	}
	if e.chunkSize <= 0 {
		e.chunkSize = defaultChunkSize
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	if e.retry.Attempts <= 0 {
		e.retry.Attempts = util.DefaultBackoff.Attempts
	}
	if e.retry.BaseDelay <= 0 {
		e.retry.BaseDelay = util.DefaultBackoff.BaseDelay
	}
	return e
}
