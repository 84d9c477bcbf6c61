// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailify/mailgraph/pkg/server/dto"
	"github.com/mailify/mailgraph/pkg/types"
)

// MetricsRecorder receives domain-level observations from handlers. The
// server wires its Prometheus metrics in through this interface so handlers
// stay registry-agnostic.
type MetricsRecorder interface {
	RecordSearchResults(contextType string, n int)
	RecordIngestOutcome(outcome string, n int)
}

// nopMetrics is used when no recorder is configured.
type nopMetrics struct{}

func (nopMetrics) RecordSearchResults(string, int) {}
func (nopMetrics) RecordIngestOutcome(string, int) {}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	var rateLimitErr *types.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return http.StatusTooManyRequests
	}
	var providerErr *types.ProviderError
	if errors.As(err, &providerErr) {
		return http.StatusBadGateway
	}
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code int, kind string, err error) {
	c.JSON(code, dto.ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Code:    code,
	})
}
