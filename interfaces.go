package mailgraph

import (
	"context"

	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// This file defines focused interfaces following the Interface Segregation
// Principle. The MailGraph interface composes them; consumers should depend
// on the smallest interface that meets their needs.

// Ingestor provides operations for adding email documents to the graph.
type Ingestor interface {
	// IngestDocument validates, enriches, embeds, and stores a single email.
	// It returns the stored document's id.
	IngestDocument(ctx context.Context, doc *types.Document) (string, error)

	// IngestBatch ingests many emails, counting duplicates and per-document
	// failures instead of aborting on them. Storage failures still abort.
	IngestBatch(ctx context.Context, docs []*types.Document) (*types.IngestStats, error)
}

// GraphBuilder provides the relationship construction pass.
type GraphBuilder interface {
	// BuildGraph creates typed relationships for the given documents. A nil
	// or empty id list processes every stored document. The pass is
	// idempotent: re-running it over the same documents creates no
	// duplicate relationships.
	BuildGraph(ctx context.Context, documentIDs []string) (*types.EdgeCounts, error)
}

// Retriever provides read-only search operations.
type Retriever interface {
	// HybridSearch combines vector similarity with graph expansion and
	// returns one ranked, provenance-tagged result list.
	HybridSearch(ctx context.Context, query string, opts search.Options) ([]types.ScoredResult, error)

	// SearchByMetadata queries documents by metadata filters alone, without
	// embeddings or traversal. An empty order sorts newest first.
	SearchByMetadata(ctx context.Context, filters *search.Filters, limit int, order []store.OrderBy) ([]types.ScoredResult, error)
}

// GraphAdmin provides administrative operations.
type GraphAdmin interface {
	// CreateIndices creates database constraints and indices.
	CreateIndices(ctx context.Context) error

	// Stats summarizes graph contents.
	Stats(ctx context.Context) (*store.GraphStats, error)

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// MailGraph is the full client surface.
type MailGraph interface {
	Ingestor
	GraphBuilder
	Retriever
	GraphAdmin
}

// Compile-time check that Client satisfies the composed interface.
var _ MailGraph = (*Client)(nil)
