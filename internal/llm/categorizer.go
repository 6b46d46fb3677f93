package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harper-ld/relnotes/internal/common"
	"github.com/harper-ld/relnotes/internal/model"
	"github.com/harper-ld/relnotes/internal/service"
)

// DefaultTimeout bounds a single categorization request. Model inference
// is unbounded in the worst case; expiry is treated as a batch failure.
const DefaultTimeout = 2 * time.Minute

// Categorizer implements service.Categorizer on top of a model provider.
type Categorizer struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
	timeout     time.Duration
}

// NewCategorizer creates a categorizer for the configured provider.
func NewCategorizer(cfg Config, logger *slog.Logger) (*Categorizer, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Categorizer{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		timeout:     timeout,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// CategorizeBatch sends one batch to the engine and parses the response.
// Transport errors and empty responses are retried with backoff; once
// retries are exhausted the whole batch is failed, leaving its entries
// unprocessed for this run.
func (c *Categorizer) CategorizeBatch(ctx context.Context, entries []model.EnrichedEntry) (service.CategorizeResult, error) {
	if len(entries) == 0 {
		return service.CategorizeResult{}, fmt.Errorf("%w: empty batch", common.ErrBatchFailed)
	}

	prompt := BuildPrompt(entries)

	var raw string
	err := common.WithRetry(ctx, func() error {
		if waitErr := c.rateLimiter.wait(ctx); waitErr != nil {
			return &common.RetryableError{Err: waitErr, Retryable: false}
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, completeErr := c.client.Complete(reqCtx, prompt)
		if completeErr != nil {
			return completeErr
		}
		if strings.TrimSpace(resp) == "" {
			return common.ErrEmptyResponse
		}

		raw = resp
		return nil
	}, c.retryOpts)
	if err != nil {
		return service.CategorizeResult{}, fmt.Errorf("%w: %v", common.ErrBatchFailed, err)
	}

	sections := ParseSections(raw)
	c.logger.Debug("categorization response parsed",
		"entries", len(entries),
		"sections", len(sections))

	return service.CategorizeResult{
		Raw:      raw,
		Sections: sections,
	}, nil
}

// Close releases the categorizer's rate-limiter resources.
func (c *Categorizer) Close() {
	c.rateLimiter.Close()
}
