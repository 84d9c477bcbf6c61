package mailgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailify/mailgraph/pkg/embeddings"
	"github.com/mailify/mailgraph/pkg/types"
)

// IngestDocument validates, enriches, embeds, and stores a single email.
// When the email's source message id is already recorded in the ingest
// ledger, the previously stored document id is returned and nothing is
// written.
func (c *Client) IngestDocument(ctx context.Context, doc *types.Document) (string, error) {
	id, _, err := c.ingestDocument(ctx, doc)
	return id, err
}

// ingestDocument reports whether the document was skipped as a duplicate.
func (c *Client) ingestDocument(ctx context.Context, doc *types.Document) (string, bool, error) {
	if doc == nil {
		return "", false, types.NewValidationError("document", "document is required")
	}
	if err := doc.Validate(); err != nil {
		return "", false, err
	}

	if c.ledger != nil && doc.MessageID != "" {
		entry, err := c.ledger.Get(doc.MessageID)
		if err != nil {
			c.logger.Warn("ingest ledger lookup failed", "message_id", doc.MessageID, "error", err)
		} else if entry != nil {
			c.logger.Debug("skipping already ingested email",
				"message_id", doc.MessageID,
				"document_id", entry.DocumentID)
			return entry.DocumentID, true, nil
		}
	}

	if c.enricher != nil {
		c.enricher.Enrich(doc)
	}

	vector, err := c.embedder.EmbedSingle(ctx, embeddings.EmbedForEmail(doc.Subject, doc.Body))
	if err != nil {
		return "", false, fmt.Errorf("embed document %s: %w", doc.ID, err)
	}
	doc.Embedding = vector

	id, err := c.store.CreateDocument(ctx, doc)
	if err != nil {
		return "", false, err
	}

	if c.ledger != nil && doc.MessageID != "" {
		if err := c.ledger.Mark(doc.MessageID, id); err != nil {
			c.logger.Warn("ingest ledger write failed", "message_id", doc.MessageID, "error", err)
		}
	}

	c.logger.Info("ingested email", "document_id", id, "subject", doc.Subject)
	return id, false, nil
}

// IngestBatch ingests many emails. Duplicates and per-document failures
// (validation, embedding) are counted and skipped; a storage failure aborts
// the batch and returns the stats accumulated so far alongside the error.
func (c *Client) IngestBatch(ctx context.Context, docs []*types.Document) (*types.IngestStats, error) {
	stats := &types.IngestStats{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		id, duplicate, err := c.ingestDocument(ctx, doc)
		if err != nil {
			var storageErr *types.StorageError
			if errors.As(err, &storageErr) {
				return stats, err
			}
			stats.Failed++
			c.logger.Warn("failed to ingest email", "error", err)
			continue
		}
		if duplicate {
			stats.Duplicates++
			continue
		}
		stats.Ingested++
		stats.DocumentIDs = append(stats.DocumentIDs, id)
	}

	c.logger.Info("batch ingestion complete",
		"ingested", stats.Ingested,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed)
	return stats, nil
}

// BuildGraph creates typed relationships for the given documents. A nil or
// empty id list processes every stored document.
func (c *Client) BuildGraph(ctx context.Context, documentIDs []string) (*types.EdgeCounts, error) {
	docs, err := c.store.GetDocuments(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	counts, err := c.builder.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	c.logger.Info("graph construction complete",
		"documents", len(docs),
		"thread_edges", counts.Thread,
		"reply_edges", counts.Reply,
		"involve_edges", counts.Involve,
		"case_edges", counts.Case,
		"skipped", counts.Skipped)
	return counts, nil
}
