package core

import (
	"context"
	"time"
)

// LLMClient defines the interface for external LLM providers that can
// classify an email and draft a reply in a single call.
type LLMClient interface {
	// ClassifyEmail classifies the email and generates a suggested reply
	ClassifyEmail(ctx context.Context, input *EmailInput) (*ClassificationResult, error)

	// ModelName identifies the underlying model for logging
	ModelName() string
}

// LocalModel defines the interface for an optional on-host sentiment model
type LocalModel interface {
	// Available reports whether the model loaded successfully
	Available() bool

	// Polarity returns a sentiment score in [0,1] (0 negative, 1 positive).
	// The second return is false when the model cannot score the text.
	Polarity(text string) (float64, bool)
}

// CacheRepository defines the interface for caching classification results
// keyed by content hash.
type CacheRepository interface {
	// Get retrieves a cached result for a content key
	Get(key string) (*ClassificationResult, bool)

	// Set stores a result under a content key
	Set(key string, result *ClassificationResult, ttl time.Duration)

	// Delete removes a cached result
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Server is a long-running ingest surface (HTTP API, SMTP proxy)
type Server interface {
	// Start begins serving; it blocks until Stop is called or a fatal
	// error occurs
	Start() error

	// Stop shuts the server down gracefully
	Stop() error
}

// Strategy is one link of the classification fallback chain. Attempt
// returns (nil, false) when the strategy cannot produce a result, in
// which case the orchestrator moves on to the next link.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, input *EmailInput, features FeatureVector) (*ClassificationResult, bool)
}
