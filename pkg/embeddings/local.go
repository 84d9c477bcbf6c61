package embeddings

import (
	"context"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"

	"github.com/mailify/mailgraph/pkg/types"
)

// LocalClient implements Client with an in-process model via
// go-embedeverything. No network calls are made after model load.
type LocalClient struct {
	client *embedder.Embedder
	config Config
}

var _ Client = (*LocalClient)(nil)

// NewLocalClient creates a local embedding client for the configured model.
func NewLocalClient(config Config) (*LocalClient, error) {
	config.applyDefaults()

	client, err := embedder.NewEmbedder(config.Model)
	if err != nil {
		return nil, types.NewProviderError("local", "failed to load embedding model", err)
	}
	return &LocalClient{client: client, config: config}, nil
}

// Embed generates embeddings for the given texts.
func (c *LocalClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	// go-embedeverything does not support context yet
	vectors, err := c.client.Embed(texts)
	if err != nil {
		return nil, types.NewProviderError("local", "failed to generate embeddings", err)
	}
	return vectors, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *LocalClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, types.NewProviderError("local", "no embeddings returned", nil)
	}
	return vectors[0], nil
}

// Dimensions returns the vector size this client produces.
func (c *LocalClient) Dimensions() int {
	return c.config.Dimensions
}

// Close releases the loaded model.
func (c *LocalClient) Close() error {
	c.client.Close()
	return nil
}
