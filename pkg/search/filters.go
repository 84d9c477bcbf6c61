package search

import (
	"time"

	"github.com/mailify/mailgraph/pkg/store"
)

// Filters holds the optional metadata constraints of a search. All supplied
// constraints combine with AND; tag membership combines with OR internally
// (a document matches if it holds any of the supplied tags).
type Filters struct {
	Category    string     `json:"category,omitempty"`
	ClientID    string     `json:"client_id,omitempty"`
	CaseID      string     `json:"case_id,omitempty"`
	SenderEmail string     `json:"sender_email,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Empty reports whether no constraint is set.
func (f *Filters) Empty() bool {
	return f == nil ||
		(f.Category == "" && f.ClientID == "" && f.CaseID == "" &&
			f.SenderEmail == "" && f.DateFrom == nil && f.DateTo == nil &&
			len(f.Tags) == 0)
}

// Predicate translates the filters into a parameter-bound store predicate.
// Every clause is a fixed fragment; caller values only ever travel in the
// parameter map, so they cannot alter query semantics.
func (f *Filters) Predicate() *store.Predicate {
	pred := store.NewPredicate()
	if f == nil {
		return pred
	}

	if f.Category != "" {
		pred.Add("d.category = $category", map[string]any{"category": f.Category})
	}
	if f.ClientID != "" {
		pred.Add("d.client_id = $client_id", map[string]any{"client_id": f.ClientID})
	}
	if f.CaseID != "" {
		pred.Add("d.case_id = $case_id", map[string]any{"case_id": f.CaseID})
	}
	if f.SenderEmail != "" {
		pred.Add("d.sender_email = $sender_email", map[string]any{"sender_email": f.SenderEmail})
	}
	if f.DateFrom != nil {
		pred.Add("d.date >= $date_from", map[string]any{"date_from": *f.DateFrom})
	}
	if f.DateTo != nil {
		pred.Add("d.date <= $date_to", map[string]any{"date_to": *f.DateTo})
	}
	if len(f.Tags) > 0 {
		pred.Add("any(tag IN d.tags WHERE tag IN $tags)", map[string]any{"tags": f.Tags})
	}
	return pred
}
