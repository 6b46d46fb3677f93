// Package pipeline orchestrates the release-notes run: batching, metadata
// enrichment, categorization, rendering, and reconciliation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/harper-ld/relnotes/internal/audit"
	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/model"
	"github.com/harper-ld/relnotes/internal/parse"
	"github.com/harper-ld/relnotes/internal/render"
	"github.com/harper-ld/relnotes/internal/service"
)

// Options configures an Engine.
type Options struct {
	Fetcher        service.DetailFetcher
	Categorizer    service.Categorizer
	Store          service.Store // optional
	AuditLog       *audit.Log    // optional
	Logger         *slog.Logger
	ProgressWriter io.Writer
	LinkBase       string
	BatchSize      int
	BatchDelay     time.Duration
}

// Engine processes batches strictly sequentially: each batch's
// enrichment, categorization, and rendering complete before the next
// batch starts. The document and audit log are the only state crossing
// batch boundaries, and both are written only by this goroutine.
type Engine struct {
	fetcher        service.DetailFetcher
	categorizer    service.Categorizer
	store          service.Store
	auditLog       *audit.Log
	logger         *slog.Logger
	progressWriter io.Writer
	linkBase       string
	batchSize      int
	batchDelay     time.Duration
}

// Result is the completed run's output, assembled fully in memory so the
// caller can write the artifacts once, at the end, or not at all.
type Result struct {
	Markdown       string
	MarkdownLinked string
	Reconciliation model.ReconciliationResult
	Batches        int
	FailedBatches  int
}

// New creates a pipeline engine.
func New(opts Options) (*Engine, error) {
	if opts.Categorizer == nil {
		return nil, fmt.Errorf("%w: categorizer is required", common.ErrMissingConfig)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = parse.DefaultBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	progressWriter := opts.ProgressWriter
	if progressWriter == nil {
		progressWriter = io.Discard
	}

	return &Engine{
		fetcher:        opts.Fetcher,
		categorizer:    opts.Categorizer,
		store:          opts.Store,
		auditLog:       opts.AuditLog,
		logger:         logger,
		progressWriter: progressWriter,
		linkBase:       opts.LinkBase,
		batchSize:      batchSize,
		batchDelay:     opts.BatchDelay,
	}, nil
}

// Run processes all entries and returns the assembled documents plus the
// reconciliation of what actually made it into them.
func (e *Engine) Run(ctx context.Context, entries []model.Entry, inputPath string) (*Result, error) {
	if len(entries) == 0 {
		return nil, common.ErrNoEntries
	}

	batches := parse.MakeBatches(entries, e.batchSize)
	e.logger.Info("Starting release notes run",
		"entries", len(entries),
		"batches", len(batches),
		"batch_size", e.batchSize)

	var runID int64
	if e.store != nil {
		id, err := e.store.BeginRun(ctx, inputPath, len(entries), e.batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		runID = id
	}

	doc := render.NewDocument(e.linkBase)
	bar := e.newProgressBar(len(batches))
	failed := 0

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := e.processBatch(ctx, runID, batch, doc); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("Batch categorization failed, its entries will be unprocessed",
				"batch", batch.Index+1,
				"entries", len(batch.Entries),
				"error", err)
			failed++
		} else {
			e.logger.Info("Batch complete",
				"batch", batch.Index+1,
				"of", len(batches))
		}

		_ = bar.Add(1)

		if e.batchDelay > 0 && batch.Index < len(batches)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.batchDelay):
			}
		}
	}
	_ = bar.Finish()

	plain := doc.Markdown()
	linked := doc.MarkdownLinked()
	reconciliation := render.Reconcile(plain, entries)

	if e.store != nil {
		processed := reconciliation.TotalInput - len(reconciliation.Unprocessed)
		if err := e.store.RecordUnprocessed(ctx, runID, reconciliation.Unprocessed); err != nil {
			e.logger.Warn("Failed to record unprocessed entries", "error", err)
		}
		if err := e.store.FinishRun(ctx, runID, processed, len(reconciliation.Unprocessed)); err != nil {
			e.logger.Warn("Failed to record run finish", "error", err)
		}
	}

	return &Result{
		Markdown:       plain,
		MarkdownLinked: linked,
		Reconciliation: reconciliation,
		Batches:        len(batches),
		FailedBatches:  failed,
	}, nil
}

// processBatch enriches, categorizes, and renders one batch.
func (e *Engine) processBatch(ctx context.Context, runID int64, batch model.Batch, doc *render.Document) error {
	enriched := e.enrich(ctx, batch)

	result, err := e.categorizer.CategorizeBatch(ctx, enriched)
	if err != nil {
		return err
	}

	if e.auditLog != nil {
		if appendErr := e.auditLog.Append(result.Raw); appendErr != nil {
			e.logger.Warn("Failed to append audit log", "error", appendErr)
		}
	}
	if e.store != nil {
		if recordErr := e.store.RecordResponse(ctx, runID, batch.Index, result.Raw); recordErr != nil {
			e.logger.Warn("Failed to record response", "error", recordErr)
		}
	}

	doc.Append(result.Sections, batch.Entries)
	return nil
}

// enrich fetches supplementary detail for every entry in the batch. A
// failed lookup degrades that entry to title and tags only; it is never
// dropped or reordered.
func (e *Engine) enrich(ctx context.Context, batch model.Batch) []model.EnrichedEntry {
	enriched := make([]model.EnrichedEntry, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		item := model.EnrichedEntry{Entry: entry}
		if e.fetcher != nil {
			detail, err := e.fetcher.FetchDetail(ctx, entry.Number)
			if err != nil {
				e.logger.Warn("Enrichment degraded, proceeding with title and tags only",
					"number", entry.Number,
					"error", err)
			} else {
				item.Detail = detail
			}
		}
		enriched = append(enriched, item)
	}
	return enriched
}

func (e *Engine) newProgressBar(batches int) *progressbar.ProgressBar {
	return progressbar.NewOptions(batches,
		progressbar.OptionSetWriter(e.progressWriter),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Categorizing batches...[reset]"),
	)
}
