package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests
// can inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// httpRequestsTotal counts all HTTP requests, partitioned by method,
	// route pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec

	// searchResultsTotal counts returned search results, partitioned by
	// context type provenance.
	searchResultsTotal *prometheus.CounterVec

	// ingestedDocumentsTotal counts documents ingested through the API,
	// partitioned by outcome: "ingested", "duplicate", or "failed".
	ingestedDocumentsTotal *prometheus.CounterVec
}

// newServerMetrics registers all server metrics against reg. promauto.With
// is used so each call registers into the provided registry rather than the
// global default, which keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailgraph",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled, partitioned by method, route, and status code.",
		}, []string{"method", "route", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mailgraph",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10},
		}, []string{"method", "route"}),

		searchResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailgraph",
			Subsystem: "search",
			Name:      "results_total",
			Help:      "Total search results returned, partitioned by context type.",
		}, []string{"context_type"}),

		ingestedDocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailgraph",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Total documents processed by the ingest endpoint, partitioned by outcome.",
		}, []string{"outcome"}),
	}
}

// middleware records request counts and latency per route pattern.
func (m *serverMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDurationSeconds.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
