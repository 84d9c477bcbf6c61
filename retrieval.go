package mailgraph

import (
	"context"

	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// HybridSearch combines vector similarity with graph expansion. Zero-valued
// option fields fall back to the client configuration.
func (c *Client) HybridSearch(ctx context.Context, query string, opts search.Options) ([]types.ScoredResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = c.config.TopK
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = c.config.MaxResults
	}
	if opts.PerTypeLimit <= 0 {
		opts.PerTypeLimit = c.config.PerTypeLimit
	}
	return c.searcher.HybridSearch(ctx, query, opts)
}

// SearchByMetadata queries documents by metadata filters alone. An empty
// order sorts most recent first.
func (c *Client) SearchByMetadata(ctx context.Context, filters *search.Filters, limit int, order []store.OrderBy) ([]types.ScoredResult, error) {
	return c.searcher.SearchByMetadata(ctx, filters, limit, order)
}

// CreateIndices creates database constraints and indices.
func (c *Client) CreateIndices(ctx context.Context) error {
	return c.store.CreateIndices(ctx)
}

// Stats summarizes graph contents.
func (c *Client) Stats(ctx context.Context) (*store.GraphStats, error) {
	return c.store.Stats(ctx)
}

// Close closes the store, the embedder, and the ingest ledger.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error

	if err := c.store.Close(ctx); err != nil {
		firstErr = err
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.ledger != nil {
		if err := c.ledger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
