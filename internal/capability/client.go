package capability

import (
	"context"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Client is an abstraction over the classifier/extractor capability.
// Implementations must honor context cancellation; every call is bounded by
// the configured timeout.
type Client interface {
	// Classify decides whether the document is a receipt
	Classify(ctx context.Context, job types.DocumentJob) (*types.Classification, error)
	// Extract pulls structured receipt fields out of the document
	Extract(ctx context.Context, job types.DocumentJob) (*types.Extraction, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new capability client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}
