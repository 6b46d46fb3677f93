// Package service defines the interfaces between the pipeline and its
// external collaborators.
package service

import (
	"context"
	"time"

	"github.com/harper-ld/relnotes/internal/model"
)

// DetailFetcher is the issue-tracker boundary: it resolves a pull-request
// number to its supplementary detail. Implementations are expected to
// block internally while waiting out rate limits rather than failing.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, number int) (*model.Detail, error)
}

// CategorizeResult is the outcome of one categorization request: the raw
// engine response (persisted for audit) and the sections recovered from
// it by best-effort parsing.
type CategorizeResult struct {
	Raw      string
	Sections []model.CategorizedSection
}

// Categorizer is the categorization-engine boundary. The engine's output
// is free-form natural language; implementations own prompt construction,
// rate limiting, retries, and response parsing.
type Categorizer interface {
	CategorizeBatch(ctx context.Context, entries []model.EnrichedEntry) (CategorizeResult, error)
}

// RunRecord summarizes one recorded pipeline run.
type RunRecord struct {
	StartedAt   time.Time
	FinishedAt  *time.Time
	InputPath   string
	ID          int64
	Total       int
	BatchSize   int
	Processed   int
	Unprocessed int
}

// Store persists run history for audit queries. All writes come from the
// single pipeline goroutine.
type Store interface {
	Migrate(ctx context.Context) error
	BeginRun(ctx context.Context, inputPath string, total, batchSize int) (int64, error)
	RecordResponse(ctx context.Context, runID int64, batchIndex int, raw string) error
	RecordUnprocessed(ctx context.Context, runID int64, entries []model.Entry) error
	FinishRun(ctx context.Context, runID int64, processed, unprocessed int) error
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}

// RetryOptions configures retry behavior for network-bound operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
