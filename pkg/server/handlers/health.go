package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mailify/mailgraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client mailgraph.GraphAdmin
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client mailgraph.GraphAdmin) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "mailgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "mailgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready - verifies database connectivity by
// running the stats query.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "mailgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.client == nil {
		response["status"] = "not_ready"
		response["error"] = "client not initialized"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	start := time.Now()
	_, err := h.client.Stats(ctx)
	duration := time.Since(start)

	check := gin.H{
		"status":      "healthy",
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		check["status"] = "unhealthy"
		check["error"] = err.Error()
		response["status"] = "not_ready"
		response["checks"] = gin.H{"database": check}
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response["checks"] = gin.H{"database": check}
	c.JSON(http.StatusOK, response)
}
