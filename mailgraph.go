package mailgraph

import (
	"log/slog"

	"github.com/mailify/mailgraph/pkg/checkpoint"
	"github.com/mailify/mailgraph/pkg/embeddings"
	"github.com/mailify/mailgraph/pkg/enrich"
	"github.com/mailify/mailgraph/pkg/graph"
	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/store"
)

// Config holds client behavior settings.
type Config struct {
	// TopK is the default similarity seed count for hybrid search.
	TopK int
	// MaxResults caps hybrid search result lists.
	MaxResults int
	// PerTypeLimit bounds graph expansion per relation type.
	PerTypeLimit int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		TopK:         search.DefaultTopK,
		MaxResults:   search.DefaultMaxResults,
		PerTypeLimit: search.DefaultPerTypeLimit,
	}
}

// Client is the main implementation of the MailGraph interface.
type Client struct {
	store    store.GraphStore
	embedder embeddings.Client
	enricher *enrich.Enricher
	resolver *graph.Resolver
	builder  *graph.Builder
	searcher *search.Searcher
	ledger   *checkpoint.Ledger
	config   *Config
	logger   *slog.Logger
}

// NewClient creates a new client over the given store and embedder. The
// enricher and ledger are optional: a nil enricher disables metadata
// enrichment, a nil ledger disables duplicate skipping across runs.
func NewClient(graphStore store.GraphStore, embedder embeddings.Client, enricher *enrich.Enricher, ledger *checkpoint.Ledger, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	resolver := graph.NewResolver(graphStore)

	return &Client{
		store:    graphStore,
		embedder: embedder,
		enricher: enricher,
		resolver: resolver,
		builder:  graph.NewBuilder(graphStore, resolver, logger),
		searcher: search.NewSearcher(graphStore, embedder, logger),
		ledger:   ledger,
		config:   config,
		logger:   logger,
	}, nil
}

// GetStore returns the underlying graph store.
func (c *Client) GetStore() store.GraphStore {
	return c.store
}

// GetEmbedder returns the embedding client.
func (c *Client) GetEmbedder() embeddings.Client {
	return c.embedder
}
