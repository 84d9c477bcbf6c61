package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mailify/mailgraph"
	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/server/dto"
	"github.com/mailify/mailgraph/pkg/types"
)

// SearchHandler handles retrieval requests
type SearchHandler struct {
	client  mailgraph.Retriever
	metrics MetricsRecorder
	logger  *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client mailgraph.Retriever, metrics MetricsRecorder, logger *slog.Logger) *SearchHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{client: client, metrics: metrics, logger: logger}
}

// Search handles POST /api/rag/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	results, err := h.client.HybridSearch(c.Request.Context(), req.Query, req.ToOptions())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "hybrid search failed", "error", err)
		writeError(c, statusForError(err), "search_failed", err)
		return
	}

	h.recordResults(results)
	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:   req.Query,
		Count:   len(results),
		Results: results,
	})
}

// SimpleSearch handles GET /api/rag/search/simple with query parameters:
// q (required), top_k, and expand.
func (h *SearchHandler) SimpleSearch(c *gin.Context) {
	query := c.Query("q")
	req := dto.SearchRequest{Query: query}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	opts := search.Options{ExpandGraph: true, Expand: search.DefaultExpandOptions()}
	if v := c.Query("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.TopK = n
		}
	}
	if v := c.Query("expand"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.ExpandGraph = b
		}
	}

	results, err := h.client.HybridSearch(c.Request.Context(), query, opts)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "hybrid search failed", "error", err)
		writeError(c, statusForError(err), "search_failed", err)
		return
	}

	h.recordResults(results)
	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

// MetadataSearch handles POST /api/rag/search/metadata
func (h *SearchHandler) MetadataSearch(c *gin.Context) {
	var req dto.MetadataSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	order, err := req.ToOrder()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	results, err := h.client.SearchByMetadata(c.Request.Context(), req.Filters.ToFilters(), req.Limit, order)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "metadata search failed", "error", err)
		writeError(c, statusForError(err), "search_failed", err)
		return
	}

	h.recordResults(results)
	c.JSON(http.StatusOK, dto.SearchResponse{
		Count:   len(results),
		Results: results,
	})
}

func (h *SearchHandler) recordResults(results []types.ScoredResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[string(r.ContextType)]++
	}
	for contextType, n := range counts {
		h.metrics.RecordSearchResults(contextType, n)
	}
}
