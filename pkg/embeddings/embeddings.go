package embeddings

import (
	"context"
	"fmt"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-large"

// DefaultDimensions is the vector size produced by the default model.
const DefaultDimensions = 1536

// Client generates vector embeddings for texts.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per input,
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector size this client produces.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds common embedding client settings.
type Config struct {
	// Model is the embedding model name.
	Model string
	// BaseURL overrides the provider endpoint for OpenAI-compatible services.
	BaseURL string
	// Dimensions is the expected vector size.
	Dimensions int
	// BatchSize caps how many texts go into a single provider request.
	BatchSize int
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Dimensions <= 0 {
		c.Dimensions = DefaultDimensions
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
}

// EmbedForEmail composes the canonical embedding text for an email. Subject
// and body are combined into one document so that both contribute to the
// vector; the exact layout is part of the stored-vector format and must not
// change between ingestion and query time.
func EmbedForEmail(subject, body string) string {
	return fmt.Sprintf("Sujet: %s\n\nCorps: %s", subject, body)
}
