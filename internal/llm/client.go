package llm

import (
	"context"
	"time"
)

// Client defines the interface for model providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the categorizer and its provider.
type Config struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	RateLimit  int
	MaxTokens  int
}
