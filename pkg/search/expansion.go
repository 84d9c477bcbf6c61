package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// DefaultPerTypeLimit caps two-hop expansion per relation type when the
// caller does not specify one.
const DefaultPerTypeLimit = 3

// ExpandOptions selects which relation types expansion traverses.
type ExpandOptions struct {
	Threads bool `json:"threads"`
	Cases   bool `json:"cases"`
	People  bool `json:"people"`
}

// DefaultExpandOptions mirrors the traversal the API enables by default:
// threads and cases on, people off.
func DefaultExpandOptions() ExpandOptions {
	return ExpandOptions{Threads: true, Cases: true, People: false}
}

// Expansion is one document discovered by graph traversal, tagged with the
// relation type that found it.
type Expansion struct {
	Document    *types.Document
	ContextType types.ContextType
}

// Engine performs bounded multi-hop traversal from a seed set. The three
// relation types are queried concurrently over the known seeds, but results
// merge in fixed precedence order - threads, cases, people - regardless of
// which query completes first.
type Engine struct {
	store  store.GraphExpander
	logger *slog.Logger
}

// NewEngine creates an expansion engine.
func NewEngine(expander store.GraphExpander, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: expander, logger: logger}
}

// Expand traverses each enabled relation type from the seeds. Thread
// expansion is one hop and uncapped beyond natural thread size; case and
// person expansion are two hops, capped at perTypeLimit multiplied by the
// seed count (a global cap, not per seed). A document already seen - as a
// seed or through an earlier-precedence relation - is skipped; its first
// discovery's context type is retained. Any store failure aborts the call.
func (e *Engine) Expand(ctx context.Context, seedIDs []string, opts ExpandOptions, perTypeLimit int) ([]Expansion, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}
	if perTypeLimit <= 0 {
		perTypeLimit = DefaultPerTypeLimit
	}
	typeCap := perTypeLimit * len(seedIDs)

	var threadDocs, caseDocs, personDocs []*types.Document
	g, gctx := errgroup.WithContext(ctx)
	if opts.Threads {
		g.Go(func() error {
			docs, err := e.store.ThreadNeighbors(gctx, seedIDs)
			threadDocs = docs
			return err
		})
	}
	if opts.Cases {
		g.Go(func() error {
			docs, err := e.store.CaseNeighbors(gctx, seedIDs, typeCap)
			caseDocs = docs
			return err
		})
	}
	if opts.People {
		g.Go(func() error {
			docs, err := e.store.PersonNeighbors(gctx, seedIDs, typeCap)
			personDocs = docs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(seedIDs))
	for _, id := range seedIDs {
		seen[id] = struct{}{}
	}

	var results []Expansion
	collect := func(docs []*types.Document, contextType types.ContextType) {
		for _, doc := range docs {
			if doc == nil || doc.ID == "" {
				continue
			}
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			results = append(results, Expansion{Document: doc, ContextType: contextType})
		}
	}
	collect(threadDocs, types.ThreadMemberContext)
	collect(caseDocs, types.SameCaseContext)
	collect(personDocs, types.SamePersonContext)

	e.logger.Debug("graph expansion complete",
		"seeds", len(seedIDs),
		"threads", len(threadDocs),
		"cases", len(caseDocs),
		"people", len(personDocs),
		"kept", len(results))
	return results, nil
}
