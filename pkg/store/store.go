package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailify/mailgraph/pkg/types"
)

// Predicate is a parameter-bound filter expression. Clauses are fixed Cypher
// fragments referencing named parameters; Params holds the bound values. The
// two travel together so that no value ever appears in query text.
type Predicate struct {
	Clauses []string
	Params  map[string]any
}

// NewPredicate returns an empty predicate.
func NewPredicate() *Predicate {
	return &Predicate{Params: map[string]any{}}
}

// Add appends a clause and binds its parameters.
func (p *Predicate) Add(clause string, params map[string]any) {
	p.Clauses = append(p.Clauses, clause)
	for k, v := range params {
		p.Params[k] = v
	}
}

// Empty reports whether the predicate constrains anything.
func (p *Predicate) Empty() bool {
	return p == nil || len(p.Clauses) == 0
}

// WhereClause renders the predicate as a WHERE fragment with all clauses
// combined by AND, or the empty string when unconstrained.
func (p *Predicate) WhereClause() string {
	if p.Empty() {
		return ""
	}
	return "WHERE " + strings.Join(p.Clauses, " AND ")
}

// SortDirection for ordering clauses.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// sortableFields whitelists the document fields a caller may order by.
var sortableFields = map[string]string{
	"date":     "d.date",
	"subject":  "d.subject",
	"category": "d.category",
	"priority": "d.priority",
}

// OrderBy is a validated ordering term. Field must be one of the sortable
// document fields; anything else is rejected at construction.
type OrderBy struct {
	field     string
	direction SortDirection
}

// NewOrderBy validates field and direction against the whitelist.
func NewOrderBy(field string, direction SortDirection) (OrderBy, error) {
	if _, ok := sortableFields[field]; !ok {
		return OrderBy{}, types.NewValidationError("order_by", fmt.Sprintf("field %q is not sortable", field))
	}
	if direction != SortAscending && direction != SortDescending {
		return OrderBy{}, types.NewValidationError("order_by", fmt.Sprintf("invalid direction %q", direction))
	}
	return OrderBy{field: field, direction: direction}, nil
}

// Render returns the Cypher ordering term. Safe by construction: both parts
// come from fixed tables.
func (o OrderBy) Render() string {
	return sortableFields[o.field] + " " + string(o.direction)
}

// ScoredDocument pairs a document with its similarity score.
type ScoredDocument struct {
	Document *types.Document
	Score    float64
}

// GraphStats summarizes graph contents for the stats endpoint.
type GraphStats struct {
	Documents  int            `json:"documents"`
	Persons    int            `json:"persons"`
	Cases      int            `json:"cases"`
	Edges      map[string]int `json:"edges"`
	Categories map[string]int `json:"categories"`
}

// DocumentStore provides operations for creating and reading documents.
type DocumentStore interface {
	// CreateDocument persists a new document and returns its id.
	CreateDocument(ctx context.Context, doc *types.Document) (string, error)

	// GetDocuments retrieves documents by id; a nil or empty id list
	// retrieves every document.
	GetDocuments(ctx context.Context, ids []string) ([]*types.Document, error)

	// FindDocumentByMessageID returns the id of the first document whose
	// external message id matches, in the store's natural enumeration order.
	// Returns types.ErrNotFound when no document matches.
	FindDocumentByMessageID(ctx context.Context, messageID string) (string, error)

	// QueryDocuments runs a pure predicate query with ordering and limit.
	QueryDocuments(ctx context.Context, pred *Predicate, limit int, order []OrderBy) ([]*types.Document, error)
}

// EntityStore provides natural-key lookup and creation for persons and cases.
type EntityStore interface {
	// FindPersonByEmail returns the person with the given (normalized) email,
	// or types.ErrNotFound.
	FindPersonByEmail(ctx context.Context, email string) (*types.Person, error)

	// CreatePerson persists a person. A uniqueness constraint on the email
	// surfaces concurrent duplicate creation as a ConstraintError.
	CreatePerson(ctx context.Context, person *types.Person) (string, error)

	// FindCaseByReference returns the case with the given external reference,
	// or types.ErrNotFound.
	FindCaseByReference(ctx context.Context, reference string) (*types.Case, error)

	// CreateCase persists a case, constrained unique on the reference.
	CreateCase(ctx context.Context, c *types.Case) (string, error)
}

// EdgeStore creates typed relationships. Creation is idempotent at the
// (type, from, to) key: relating the same pair twice is a no-op.
type EdgeStore interface {
	Relate(ctx context.Context, fromID string, edgeType types.EdgeType, toID string) error
}

// GraphExpander follows typed edges outward from a seed set. Result ordering
// within a call is the store's natural enumeration order and is not stable
// across calls.
type GraphExpander interface {
	// ThreadNeighbors returns the one-hop thread members of the seeds.
	ThreadNeighbors(ctx context.Context, seedIDs []string) ([]*types.Document, error)

	// CaseNeighbors returns documents sharing a case with any seed (two-hop),
	// capped at limit.
	CaseNeighbors(ctx context.Context, seedIDs []string, limit int) ([]*types.Document, error)

	// PersonNeighbors returns documents sharing a participant with any seed
	// (two-hop), capped at limit.
	PersonNeighbors(ctx context.Context, seedIDs []string, limit int) ([]*types.Document, error)
}

// VectorSearcher delegates similarity ranking to the store's native cosine
// similarity over document embeddings.
type VectorSearcher interface {
	VectorSearch(ctx context.Context, embedding []float32, limit int, pred *Predicate) ([]ScoredDocument, error)
}

// Admin provides schema bootstrap and statistics.
type Admin interface {
	CreateIndices(ctx context.Context) error
	Stats(ctx context.Context) (*GraphStats, error)
	Close(ctx context.Context) error
}

// GraphStore is the full store surface the mailgraph client depends on.
// Consumers should depend on the smallest interface that meets their needs.
type GraphStore interface {
	DocumentStore
	EntityStore
	EdgeStore
	GraphExpander
	VectorSearcher
	Admin
}
