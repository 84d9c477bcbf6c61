package mailgraph

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mailify/mailgraph"
	"github.com/mailify/mailgraph/pkg/checkpoint"
	"github.com/mailify/mailgraph/pkg/config"
	"github.com/mailify/mailgraph/pkg/embeddings"
	"github.com/mailify/mailgraph/pkg/enrich"
	mailgraphLogger "github.com/mailify/mailgraph/pkg/logger"
	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/telemetry"
)

// newLogger builds the process logger: colored terminal output, wrapped
// with the Parquet error handler when a telemetry path is configured.
func newLogger(cfg *config.Config) *slog.Logger {
	colorHandler := mailgraphLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: mailgraphLogger.ParseLevel(cfg.Log.Level),
	})

	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize error tracking: %v\n", err)
		} else {
			return slog.New(parquetHandler)
		}
	}
	return slog.New(colorHandler)
}

// newEmbedder builds the configured embedding client, wrapped with retry
// and, when enabled, a circuit breaker.
func newEmbedder(cfg *config.Config, logger *slog.Logger) (embeddings.Client, error) {
	embedConfig := embeddings.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	}

	var client embeddings.Client
	var err error
	switch cfg.Embedding.Provider {
	case "openai":
		client, err = embeddings.NewOpenAIClient(cfg.Embedding.APIKey, embedConfig)
	case "local":
		client, err = embeddings.NewLocalClient(embedConfig)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	retryConfig := embeddings.DefaultRetryConfig()
	if cfg.Embedding.MaxRetries > 0 {
		retryConfig.MaxRetries = cfg.Embedding.MaxRetries
	}
	client = embeddings.NewRetryClient(client, retryConfig)

	if cfg.CircuitBreaker.Enabled {
		client = embeddings.NewCircuitBreakerClient(client, embeddings.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, logger, "embeddings")
	}
	return client, nil
}

// initializeClient wires the full client from configuration.
func initializeClient(cfg *config.Config) (*mailgraph.Client, error) {
	logger := newLogger(cfg)

	if cfg.Database.URI == "" {
		return nil, fmt.Errorf("database URI is required")
	}
	graphStore, err := store.NewNeo4jStore(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	enrichOpts := []enrich.Option{}
	if len(cfg.Enrichment.ClientDomains) > 0 {
		enrichOpts = append(enrichOpts, enrich.WithClientDomains(cfg.Enrichment.ClientDomains...))
	}
	if len(cfg.Enrichment.ConfrereDomains) > 0 {
		enrichOpts = append(enrichOpts, enrich.WithConfrereDomains(cfg.Enrichment.ConfrereDomains...))
	}
	if len(cfg.Enrichment.ExpertDomains) > 0 {
		enrichOpts = append(enrichOpts, enrich.WithExpertDomains(cfg.Enrichment.ExpertDomains...))
	}
	enricher := enrich.NewEnricher(enrichOpts...)

	var ledger *checkpoint.Ledger
	if cfg.Checkpoint.Enabled && cfg.Checkpoint.Path != "" {
		ledger, err = checkpoint.Open(checkpoint.Config{
			Path:       cfg.Checkpoint.Path,
			SyncWrites: cfg.Checkpoint.SyncWrites,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open ingest ledger: %w", err)
		}
	}

	clientConfig := mailgraph.DefaultConfig()
	if cfg.Search.TopK > 0 {
		clientConfig.TopK = cfg.Search.TopK
	}
	if cfg.Search.MaxResults > 0 {
		clientConfig.MaxResults = cfg.Search.MaxResults
	}
	if cfg.Search.PerTypeLimit > 0 {
		clientConfig.PerTypeLimit = cfg.Search.PerTypeLimit
	}

	return mailgraph.NewClient(graphStore, embedder, enricher, ledger, clientConfig, logger)
}
