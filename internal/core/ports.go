package core

import (
	"context"
	"time"
)

// GenerationClient defines the interface for text-generation services
type GenerationClient interface {
	// Generate sends a prompt and returns the completion text
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier receives the display events a workflow run emits
type Notifier interface {
	Info(text string)
	Warning(text string)
	Error(text string)
	Success(text string)
	Field(label, value string)
}

// CompletionCache defines the interface for caching model completions
type CompletionCache interface {
	// Get retrieves a live cached completion
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a completion for the given TTL
	Set(ctx context.Context, key, completion string, ttl time.Duration) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
