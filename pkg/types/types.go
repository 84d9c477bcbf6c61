package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyDocumentID = errors.New("document id cannot be empty")
	ErrEmptyContent    = errors.New("subject and body cannot both be empty")
	ErrEmptySender     = errors.New("sender email cannot be empty")
	ErrEmptyEmail      = errors.New("email address cannot be empty")
	ErrEmptyReference  = errors.New("case reference cannot be empty")
	ErrInvalidLimit    = errors.New("limit must be positive")
)

// Document represents an ingested email-like record with content, metadata,
// and an embedding vector. Documents are immutable once ingested; edge linkage
// happens in the graph builder.
type Document struct {
	ID          string    `json:"id" mapstructure:"id"`
	Subject     string    `json:"subject" mapstructure:"subject"`
	Body        string    `json:"body" mapstructure:"body"`
	Embedding   []float32 `json:"embedding,omitempty" mapstructure:"embedding"`
	SenderEmail string    `json:"sender_email" mapstructure:"sender_email"`
	SenderName  string    `json:"sender_name" mapstructure:"sender_name"`
	Recipients  []string  `json:"recipients" mapstructure:"recipients"`
	Cc          []string  `json:"cc,omitempty" mapstructure:"cc"`
	Date        time.Time `json:"date" mapstructure:"date"`

	// Threading headers
	ThreadID  string `json:"thread_id,omitempty" mapstructure:"thread_id"`
	MessageID string `json:"message_id,omitempty" mapstructure:"message_id"`
	InReplyTo string `json:"in_reply_to,omitempty" mapstructure:"in_reply_to"`

	// Enriched metadata, populated during ingestion
	Category       string   `json:"category,omitempty" mapstructure:"category"`
	ClientID       string   `json:"client_id,omitempty" mapstructure:"client_id"`
	CaseID         string   `json:"case_id,omitempty" mapstructure:"case_id"`
	Tags           []string `json:"tags,omitempty" mapstructure:"tags"`
	Priority       string   `json:"priority,omitempty" mapstructure:"priority"`
	HasAttachments bool     `json:"has_attachments" mapstructure:"has_attachments"`
	Language       string   `json:"language,omitempty" mapstructure:"language"`
}

// Validate checks the fields required before a document may be ingested.
func (d *Document) Validate() error {
	if d.Subject == "" && d.Body == "" {
		return ErrEmptyContent
	}
	if d.SenderEmail == "" {
		return ErrEmptySender
	}
	return nil
}

// RawDocument is the ingestion input before enrichment and embedding.
type RawDocument struct {
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SenderEmail    string    `json:"sender_email"`
	SenderName     string    `json:"sender_name"`
	Recipients     []string  `json:"recipients"`
	Cc             []string  `json:"cc"`
	Date           time.Time `json:"date"`
	ThreadID       string    `json:"thread_id"`
	MessageID      string    `json:"message_id"`
	InReplyTo      string    `json:"in_reply_to"`
	HasAttachments bool      `json:"has_attachments"`
}

// Person is an entity resolved from an email address. The address is the
// natural key: a given address always resolves to the same person.
type Person struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Case is a legal case file resolved from an external reference
// (e.g. "RG 24/00123"). The reference is the natural key.
type Case struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	ClientName  string `json:"client_name"`
	Description string `json:"description"`
}

// EdgeType identifies a typed relationship in the derived graph.
type EdgeType string

const (
	// ThreadMemberEdge links two documents sharing a thread id. Recorded in
	// both directions independently, so a thread of n members holds n(n-1)
	// directed edges.
	ThreadMemberEdge EdgeType = "THREAD_MEMBER"
	// RepliesToEdge links a reply to the document whose message id matches
	// its in-reply-to header. At most one target per document.
	RepliesToEdge EdgeType = "REPLIES_TO"
	// InvolvesEdge links a document to a person appearing as sender or
	// recipient. Cc addresses are intentionally not linked.
	InvolvesEdge EdgeType = "INVOLVES"
	// RelatedToCaseEdge links a document to the case file it references.
	RelatedToCaseEdge EdgeType = "RELATED_TO_CASE"
)

// EdgeCounts aggregates the outcome of a graph build for observability.
// Duplicate-edge attempts are no-ops and counted as created; failed attempts
// are counted in Skipped and never abort the batch.
type EdgeCounts struct {
	Thread  int `json:"thread"`
	Reply   int `json:"reply"`
	Involve int `json:"involve"`
	Case    int `json:"case"`
	Skipped int `json:"skipped"`
}

// Total returns the number of edges created across all types.
func (c EdgeCounts) Total() int {
	return c.Thread + c.Reply + c.Involve + c.Case
}

// ContextType records why a result is present in a search response.
type ContextType string

const (
	// DirectMatch marks a document returned by similarity search itself.
	DirectMatch ContextType = "direct_match"
	// ThreadMemberContext marks a document reached through a shared thread.
	ThreadMemberContext ContextType = "thread_member"
	// SameCaseContext marks a document reached through a shared case file.
	SameCaseContext ContextType = "same_case"
	// SamePersonContext marks a document reached through a shared participant.
	SamePersonContext ContextType = "same_person"
	// MetadataFilter marks a document returned by a pure predicate query.
	MetadataFilter ContextType = "metadata_filter"
)

// ScoredResult is a single entry of a ranked retrieval result list.
// SimilarityScore is 0.0 for anything not found by similarity search.
type ScoredResult struct {
	DocumentID      string      `json:"document_id"`
	Subject         string      `json:"subject"`
	Body            string      `json:"body"`
	SenderEmail     string      `json:"sender_email"`
	SenderName      string      `json:"sender_name"`
	Date            time.Time   `json:"date"`
	SimilarityScore float64     `json:"similarity_score"`
	ContextType     ContextType `json:"context_type"`
	Category        string      `json:"category,omitempty"`
	CaseID          string      `json:"case_id,omitempty"`
}

// IngestStats aggregates the outcome of a batch ingestion. Per-document
// failures are counted, not propagated.
type IngestStats struct {
	DocumentIDs []string `json:"document_ids"`
	Ingested    int      `json:"ingested"`
	Duplicates  int      `json:"duplicates"`
	Failed      int      `json:"failed"`
}

// ContextKey is the type for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the id of the originating API request.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyRequestSource carries the surface the request came from.
	ContextKeyRequestSource ContextKey = "request_source"
)
