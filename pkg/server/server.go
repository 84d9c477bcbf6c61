// Package server exposes the client over an HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailify/mailgraph"
	"github.com/mailify/mailgraph/pkg/config"
	"github.com/mailify/mailgraph/pkg/server/handlers"
	"github.com/mailify/mailgraph/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	client   mailgraph.MailGraph
	server   *http.Server
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *serverMetrics
}

// New creates a new server instance
func New(cfg *config.Config, client mailgraph.MailGraph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		config:   cfg,
		client:   client,
		logger:   logger,
		registry: registry,
		metrics:  newServerMetrics(registry),
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())
	s.router.Use(s.metrics.middleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	searchHandler := handlers.NewSearchHandler(s.client, s.metrics, s.logger)
	ingestHandler := handlers.NewIngestHandler(s.client, s.metrics, s.logger)
	statsHandler := handlers.NewStatsHandler(s.client, s.logger)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)

	// Prometheus metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		rag := api.Group("/rag")
		{
			rag.POST("/search", searchHandler.Search)
			rag.GET("/search/simple", searchHandler.SimpleSearch)
			rag.POST("/search/metadata", searchHandler.MetadataSearch)
		}

		api.POST("/emails/ingest", ingestHandler.Ingest)
		api.POST("/graph/build", ingestHandler.BuildGraph)
		api.GET("/stats", statsHandler.Stats)
	}
}

// Router returns the configured router. Setup must have been called.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}

// RecordSearchResults implements handlers.MetricsRecorder.
func (m *serverMetrics) RecordSearchResults(contextType string, n int) {
	m.searchResultsTotal.WithLabelValues(contextType).Add(float64(n))
}

// RecordIngestOutcome implements handlers.MetricsRecorder.
func (m *serverMetrics) RecordIngestOutcome(outcome string, n int) {
	m.ingestedDocumentsTotal.WithLabelValues(outcome).Add(float64(n))
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware tags the request context with an id and source so
// telemetry can attribute error records.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
