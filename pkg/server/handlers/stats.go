package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailify/mailgraph"
)

// StatsHandler handles graph statistics requests
type StatsHandler struct {
	client mailgraph.GraphAdmin
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(client mailgraph.GraphAdmin, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{client: client, logger: logger}
}

// Stats handles GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	stats, err := h.client.Stats(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "stats query failed", "error", err)
		writeError(c, statusForError(err), "stats_failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
