package embeddings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mailify/mailgraph/pkg/types"
)

// OpenAIClient implements Client using OpenAI's embedding API.
// Supports OpenAI-compatible services through custom BaseURL configuration.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI embedding client.
func NewOpenAIClient(apiKey string, config Config) (*OpenAIClient, error) {
	config.applyDefaults()

	var client *openai.Client
	if config.BaseURL != "" {
		// Some OpenAI-compatible services don't require authentication.
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		if !strings.Contains(config.BaseURL, "/v1") {
			clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/") + "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if apiKey == "" {
			return nil, types.NewProviderError("openai", "api key is required", nil)
		}
		client = openai.NewClient(apiKey)
	}

	return &OpenAIClient{client: client, config: config}, nil
}

// Embed generates embeddings for the given texts. Inputs are split into
// batches of at most BatchSize texts per request.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *OpenAIClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.config.Model),
		Dimensions: c.config.Dimensions,
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, types.NewProviderError("openai", "embedding count does not match input count", nil)
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, types.NewProviderError("openai", "embedding index out of range", nil)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, types.NewProviderError("openai", "no embeddings returned", nil)
	}
	return vectors[0], nil
}

// Dimensions returns the vector size this client produces.
func (c *OpenAIClient) Dimensions() int {
	return c.config.Dimensions
}

// Close cleans up any resources.
func (c *OpenAIClient) Close() error {
	return nil
}

// mapProviderError translates go-openai errors into the package error
// taxonomy so callers can distinguish rate limits from hard failures.
func mapProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return types.NewRateLimitError("openai rate limit exceeded")
		}
		return types.NewProviderError("openai", apiErr.Message, err)
	}
	return types.NewProviderError("openai", "embedding request failed", err)
}
