package search

import (
	"context"
	"log/slog"

	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// Default bounds, matching the API defaults.
const (
	DefaultTopK       = 5
	DefaultMaxResults = 20
	DefaultLimit      = 20
)

// Embedder turns query text into a vector. The embedding provider is an
// external collaborator; its failures surface as ProviderError or
// RateLimitError and abort the search.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// SearcherStore is the store surface a searcher needs.
type SearcherStore interface {
	store.DocumentStore
	store.GraphExpander
	store.VectorSearcher
}

// Options control one hybrid search.
type Options struct {
	TopK         int           `json:"top_k"`
	Filters      *Filters      `json:"filters,omitempty"`
	ExpandGraph  bool          `json:"expand_graph"`
	Expand       ExpandOptions `json:"expand"`
	PerTypeLimit int           `json:"per_type_limit"`
	MaxResults   int           `json:"max_results"`
}

// Searcher runs hybrid and metadata-only searches.
type Searcher struct {
	store    SearcherStore
	embedder Embedder
	engine   *Engine
	logger   *slog.Logger
}

// NewSearcher creates a searcher over the given store and embedder.
func NewSearcher(searcherStore SearcherStore, embedder Embedder, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		store:    searcherStore,
		embedder: embedder,
		engine:   NewEngine(searcherStore, logger),
		logger:   logger,
	}
}

// HybridSearch embeds the query, fetches similarity seeds under the filter
// predicate, optionally expands the graph from the seed ids, and merges
// everything into one deduplicated, provenance-tagged list. Seeds come first,
// ordered by descending similarity score; expansion results follow at score
// 0.0 in precedence order; the concatenation is cut at MaxResults. No
// document id appears twice: a document reachable both as a seed and via
// expansion keeps only its direct_match entry.
func (s *Searcher) HybridSearch(ctx context.Context, query string, opts Options) ([]types.ScoredResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	embedding, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, err
	}

	seeds, err := s.store.VectorSearch(ctx, embedding, opts.TopK, opts.Filters.Predicate())
	if err != nil {
		return nil, err
	}

	if !opts.ExpandGraph {
		bound := opts.TopK
		if opts.MaxResults < bound {
			bound = opts.MaxResults
		}
		if len(seeds) > bound {
			seeds = seeds[:bound]
		}
		return mergeResults(seeds, nil, bound), nil
	}

	seedIDs := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		seedIDs = append(seedIDs, seed.Document.ID)
	}

	expansions, err := s.engine.Expand(ctx, seedIDs, opts.Expand, opts.PerTypeLimit)
	if err != nil {
		return nil, err
	}

	results := mergeResults(seeds, expansions, opts.MaxResults)
	s.logger.Debug("hybrid search complete",
		"seeds", len(seeds),
		"expansions", len(expansions),
		"results", len(results))
	return results, nil
}

// SearchByMetadata runs a pure predicate query with no similarity component.
// Every result scores 0.0 and is tagged metadata_filter. When no ordering is
// supplied, results come newest first.
func (s *Searcher) SearchByMetadata(ctx context.Context, filters *Filters, limit int, order []store.OrderBy) ([]types.ScoredResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(order) == 0 {
		byDate, err := store.NewOrderBy("date", store.SortDescending)
		if err != nil {
			return nil, err
		}
		order = []store.OrderBy{byDate}
	}

	docs, err := s.store.QueryDocuments(ctx, filters.Predicate(), limit, order)
	if err != nil {
		return nil, err
	}

	results := make([]types.ScoredResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, toScoredResult(doc, 0.0, types.MetadataFilter))
	}
	return results, nil
}

// mergeResults combines similarity seeds and expansion candidates into one
// ordered, deduplicated list: seeds in store score order, then expansions in
// precedence order at score 0.0, truncated to maxResults by prefix cut. No
// re-ranking happens across the two groups.
func mergeResults(seeds []store.ScoredDocument, expansions []Expansion, maxResults int) []types.ScoredResult {
	results := make([]types.ScoredResult, 0, len(seeds)+len(expansions))
	seen := make(map[string]struct{}, len(seeds))

	for _, seed := range seeds {
		if seed.Document == nil {
			continue
		}
		if _, dup := seen[seed.Document.ID]; dup {
			continue
		}
		seen[seed.Document.ID] = struct{}{}
		results = append(results, toScoredResult(seed.Document, seed.Score, types.DirectMatch))
	}
	for _, exp := range expansions {
		if _, dup := seen[exp.Document.ID]; dup {
			continue
		}
		seen[exp.Document.ID] = struct{}{}
		results = append(results, toScoredResult(exp.Document, 0.0, exp.ContextType))
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func toScoredResult(doc *types.Document, score float64, contextType types.ContextType) types.ScoredResult {
	return types.ScoredResult{
		DocumentID:      doc.ID,
		Subject:         doc.Subject,
		Body:            doc.Body,
		SenderEmail:     doc.SenderEmail,
		SenderName:      doc.SenderName,
		Date:            doc.Date,
		SimilarityScore: score,
		ContextType:     contextType,
		Category:        doc.Category,
		CaseID:          doc.CaseID,
	}
}
