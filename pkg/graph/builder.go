package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// BuilderStore is the store surface the builder needs.
type BuilderStore interface {
	store.DocumentStore
	store.EdgeStore
}

// Builder derives typed edges from a document batch. A single edge failure is
// caught, counted as skipped, and does not abort the batch; cancellation of
// the context aborts the build, leaving already-committed edges in place.
type Builder struct {
	store    BuilderStore
	resolver *Resolver
	logger   *slog.Logger
}

// NewBuilder creates a graph builder.
func NewBuilder(builderStore BuilderStore, resolver *Resolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:    builderStore,
		resolver: resolver,
		logger:   logger,
	}
}

// Build derives edges for the given documents and returns aggregate counts
// per edge type. Duplicate-edge attempts are no-ops, so building twice over
// an identical batch yields identical counts.
func (b *Builder) Build(ctx context.Context, docs []*types.Document) (*types.EdgeCounts, error) {
	counts := &types.EdgeCounts{}

	if err := b.buildThreadEdges(ctx, docs, counts); err != nil {
		return counts, err
	}
	if err := b.buildReplyEdges(ctx, docs, counts); err != nil {
		return counts, err
	}
	if err := b.buildInvolvementEdges(ctx, docs, counts); err != nil {
		return counts, err
	}
	if err := b.buildCaseEdges(ctx, docs, counts); err != nil {
		return counts, err
	}

	b.logger.Info("graph build complete",
		"thread", counts.Thread,
		"reply", counts.Reply,
		"involve", counts.Involve,
		"case", counts.Case,
		"skipped", counts.Skipped)
	return counts, nil
}

// relate attempts one edge. A ConstraintError means the edge already exists
// and counts as created; any other failure is logged and counted as skipped.
func (b *Builder) relate(ctx context.Context, fromID string, edgeType types.EdgeType, toID string, counts *types.EdgeCounts, created *int) {
	err := b.store.Relate(ctx, fromID, edgeType, toID)
	if err == nil || errors.Is(err, &types.ConstraintError{}) {
		*created++
		return
	}
	counts.Skipped++
	b.logger.Warn("edge creation failed",
		"edge_type", string(edgeType),
		"from", fromID,
		"to", toID,
		"error", err)
}

// buildThreadEdges fully connects every pair of documents sharing a non-empty
// thread id. Both directions are recorded independently, giving n(n-1)
// directed edges for a thread of n members.
func (b *Builder) buildThreadEdges(ctx context.Context, docs []*types.Document, counts *types.EdgeCounts) error {
	threads := map[string][]string{}
	var order []string
	for _, doc := range docs {
		if doc.ThreadID == "" {
			continue
		}
		if _, ok := threads[doc.ThreadID]; !ok {
			order = append(order, doc.ThreadID)
		}
		threads[doc.ThreadID] = append(threads[doc.ThreadID], doc.ID)
	}

	for _, threadID := range order {
		members := threads[threadID]
		if len(members) < 2 {
			continue
		}
		for _, from := range members {
			for _, to := range members {
				if from == to {
					continue
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				b.relate(ctx, from, types.ThreadMemberEdge, to, counts, &counts.Thread)
			}
		}
	}
	return nil
}

// buildReplyEdges links each document carrying an in-reply-to id to the
// document whose external message id matches it exactly. When several match,
// the first record in the store's enumeration order wins.
func (b *Builder) buildReplyEdges(ctx context.Context, docs []*types.Document, counts *types.EdgeCounts) error {
	for _, doc := range docs {
		if doc.InReplyTo == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		targetID, err := b.store.FindDocumentByMessageID(ctx, doc.InReplyTo)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			counts.Skipped++
			b.logger.Warn("reply target lookup failed", "document", doc.ID, "in_reply_to", doc.InReplyTo, "error", err)
			continue
		}
		b.relate(ctx, doc.ID, types.RepliesToEdge, targetID, counts, &counts.Reply)
	}
	return nil
}

// buildInvolvementEdges links each document to its resolved sender and to
// every resolved recipient. Cc addresses are intentionally not linked.
func (b *Builder) buildInvolvementEdges(ctx context.Context, docs []*types.Document, counts *types.EdgeCounts) error {
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if doc.SenderEmail != "" {
			b.involvePerson(ctx, doc.ID, doc.SenderEmail, doc.SenderName, counts)
		}
		for _, recipient := range doc.Recipients {
			if recipient == "" {
				continue
			}
			b.involvePerson(ctx, doc.ID, recipient, "", counts)
		}
	}
	return nil
}

func (b *Builder) involvePerson(ctx context.Context, docID, email, name string, counts *types.EdgeCounts) {
	personID, err := b.resolver.ResolvePerson(ctx, email, name)
	if err != nil {
		counts.Skipped++
		b.logger.Warn("person resolution failed", "document", docID, "email", email, "error", err)
		return
	}
	b.relate(ctx, docID, types.InvolvesEdge, personID, counts, &counts.Involve)
}

// buildCaseEdges links each document carrying a case id to the resolved case.
func (b *Builder) buildCaseEdges(ctx context.Context, docs []*types.Document, counts *types.EdgeCounts) error {
	for _, doc := range docs {
		if doc.CaseID == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		caseID, err := b.resolver.ResolveCase(ctx, doc.CaseID)
		if err != nil {
			counts.Skipped++
			b.logger.Warn("case resolution failed", "document", doc.ID, "reference", doc.CaseID, "error", err)
			continue
		}
		b.relate(ctx, doc.ID, types.RelatedToCaseEdge, caseID, counts, &counts.Case)
	}
	return nil
}
