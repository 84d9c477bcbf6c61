package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailify/mailgraph"
	"github.com/mailify/mailgraph/pkg/server/dto"
	"github.com/mailify/mailgraph/pkg/types"
)

// IngestClient is the client surface the ingest endpoints need.
type IngestClient interface {
	mailgraph.Ingestor
	mailgraph.GraphBuilder
}

// IngestHandler handles ingestion and graph construction requests
type IngestHandler struct {
	client  IngestClient
	metrics MetricsRecorder
	logger  *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(client IngestClient, metrics MetricsRecorder, logger *slog.Logger) *IngestHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{client: client, metrics: metrics, logger: logger}
}

// Ingest handles POST /api/emails/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	docs := make([]*types.Document, len(req.Emails))
	for i := range req.Emails {
		docs[i] = req.Emails[i].ToDocument()
	}

	stats, err := h.client.IngestBatch(c.Request.Context(), docs)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "batch ingestion aborted", "error", err)
		writeError(c, statusForError(err), "ingest_failed", err)
		return
	}

	h.metrics.RecordIngestOutcome("ingested", stats.Ingested)
	h.metrics.RecordIngestOutcome("duplicate", stats.Duplicates)
	h.metrics.RecordIngestOutcome("failed", stats.Failed)

	resp := dto.IngestResponse{
		Ingested:    stats.Ingested,
		Duplicates:  stats.Duplicates,
		Failed:      stats.Failed,
		DocumentIDs: stats.DocumentIDs,
	}

	if req.BuildGraph && len(stats.DocumentIDs) > 0 {
		edges, err := h.client.BuildGraph(c.Request.Context(), stats.DocumentIDs)
		if err != nil {
			h.logger.ErrorContext(c.Request.Context(), "graph construction failed", "error", err)
			writeError(c, statusForError(err), "build_failed", err)
			return
		}
		resp.Edges = edges
	}

	c.JSON(http.StatusOK, resp)
}

// BuildGraph handles POST /api/graph/build
func (h *IngestHandler) BuildGraph(c *gin.Context) {
	var req dto.BuildGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	edges, err := h.client.BuildGraph(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "graph construction failed", "error", err)
		writeError(c, statusForError(err), "build_failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.BuildGraphResponse{
		Edges: *edges,
		Total: edges.Total(),
	})
}
