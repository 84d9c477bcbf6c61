package dto

import (
	"errors"
	"time"

	"github.com/mailify/mailgraph/pkg/types"
)

// Email is one email in an ingest request.
type Email struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SenderEmail    string    `json:"sender_email" binding:"required"`
	SenderName     string    `json:"sender_name"`
	Recipients     []string  `json:"recipients"`
	Cc             []string  `json:"cc"`
	Date           time.Time `json:"date"`
	ThreadID       string    `json:"thread_id"`
	MessageID      string    `json:"message_id"`
	InReplyTo      string    `json:"in_reply_to"`
	HasAttachments bool      `json:"has_attachments"`
}

// ToDocument converts the wire email to a document.
func (e *Email) ToDocument() *types.Document {
	return &types.Document{
		ID:             e.ID,
		Subject:        e.Subject,
		Body:           e.Body,
		SenderEmail:    e.SenderEmail,
		SenderName:     e.SenderName,
		Recipients:     e.Recipients,
		Cc:             e.Cc,
		Date:           e.Date,
		ThreadID:       e.ThreadID,
		MessageID:      e.MessageID,
		InReplyTo:      e.InReplyTo,
		HasAttachments: e.HasAttachments,
	}
}

// IngestRequest is the body of POST /api/emails/ingest.
type IngestRequest struct {
	Emails []Email `json:"emails" binding:"required"`
	// BuildGraph triggers relationship construction over the newly
	// ingested documents once the batch is stored.
	BuildGraph bool `json:"build_graph"`
}

// Validate checks the request fields.
func (r *IngestRequest) Validate() error {
	if len(r.Emails) == 0 {
		return errors.New("emails cannot be empty")
	}
	return nil
}

// IngestResponse reports the outcome of an ingest request.
type IngestResponse struct {
	Ingested    int               `json:"ingested"`
	Duplicates  int               `json:"duplicates"`
	Failed      int               `json:"failed"`
	DocumentIDs []string          `json:"document_ids"`
	Edges       *types.EdgeCounts `json:"edges,omitempty"`
}

// BuildGraphRequest is the body of POST /api/graph/build.
type BuildGraphRequest struct {
	// DocumentIDs limits the pass to the listed documents. Empty processes
	// every stored document.
	DocumentIDs []string `json:"document_ids"`
}

// BuildGraphResponse reports created edges per relationship type.
type BuildGraphResponse struct {
	Edges types.EdgeCounts `json:"edges"`
	Total int              `json:"total"`
}
