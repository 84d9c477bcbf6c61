package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// MaxQueryLength bounds query strings accepted by the API.
const MaxQueryLength = 8192

// ErrQueryTooLong is returned when a query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query exceeds maximum length")

// SearchFilters narrows a search to documents matching all set fields.
type SearchFilters struct {
	Category    string     `json:"category,omitempty"`
	ClientID    string     `json:"client_id,omitempty"`
	CaseID      string     `json:"case_id,omitempty"`
	SenderEmail string     `json:"sender_email,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// ToFilters converts the wire filters to the search package's type.
// Returns nil when no field is set.
func (f *SearchFilters) ToFilters() *search.Filters {
	if f == nil {
		return nil
	}
	filters := &search.Filters{
		Category:    f.Category,
		ClientID:    f.ClientID,
		CaseID:      f.CaseID,
		SenderEmail: f.SenderEmail,
		DateFrom:    f.DateFrom,
		DateTo:      f.DateTo,
		Tags:        f.Tags,
	}
	if filters.Empty() {
		return nil
	}
	return filters
}

// SearchRequest is the body of POST /api/rag/search.
type SearchRequest struct {
	Query         string         `json:"query" binding:"required"`
	TopK          int            `json:"top_k"`
	MaxResults    int            `json:"max_results"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	ExpandGraph   *bool          `json:"expand_graph,omitempty"`
	ExpandThreads *bool          `json:"expand_threads,omitempty"`
	ExpandCases   *bool          `json:"expand_cases,omitempty"`
	ExpandPeople  *bool          `json:"expand_people,omitempty"`
	PerTypeLimit  int            `json:"per_type_limit"`
}

// Validate checks the request fields.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ToOptions converts the request to search options. Expansion defaults to
// on, with threads and cases traversed and people left off.
func (r *SearchRequest) ToOptions() search.Options {
	opts := search.Options{
		TopK:         r.TopK,
		MaxResults:   r.MaxResults,
		PerTypeLimit: r.PerTypeLimit,
		ExpandGraph:  true,
		Expand:       search.DefaultExpandOptions(),
	}
	if r.ExpandGraph != nil {
		opts.ExpandGraph = *r.ExpandGraph
	}
	if r.ExpandThreads != nil {
		opts.Expand.Threads = *r.ExpandThreads
	}
	if r.ExpandCases != nil {
		opts.Expand.Cases = *r.ExpandCases
	}
	if r.ExpandPeople != nil {
		opts.Expand.People = *r.ExpandPeople
	}
	if r.Filters != nil {
		opts.Filters = r.Filters.ToFilters()
	}
	return opts
}

// OrderTerm is one ordering clause of a metadata search. Field must be a
// sortable document field; direction is "asc" or "desc" (defaulting to
// ascending when omitted).
type OrderTerm struct {
	Field     string `json:"field" binding:"required"`
	Direction string `json:"direction,omitempty"`
}

// MetadataSearchRequest is the body of POST /api/rag/search/metadata.
type MetadataSearchRequest struct {
	Filters SearchFilters `json:"filters"`
	Limit   int           `json:"limit"`
	OrderBy []OrderTerm   `json:"order_by,omitempty"`
}

// ToOrder validates the ordering terms against the store's whitelist. A
// request with no terms yields nil, leaving the default ordering to the
// searcher.
func (r *MetadataSearchRequest) ToOrder() ([]store.OrderBy, error) {
	if len(r.OrderBy) == 0 {
		return nil, nil
	}
	order := make([]store.OrderBy, 0, len(r.OrderBy))
	for _, term := range r.OrderBy {
		direction := store.SortAscending
		if term.Direction != "" {
			direction = store.SortDirection(strings.ToUpper(term.Direction))
		}
		o, err := store.NewOrderBy(term.Field, direction)
		if err != nil {
			return nil, err
		}
		order = append(order, o)
	}
	return order, nil
}

// SearchResponse is the body of search results.
type SearchResponse struct {
	Query   string               `json:"query,omitempty"`
	Count   int                  `json:"count"`
	Results []types.ScoredResult `json:"results"`
}
