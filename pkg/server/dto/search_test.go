package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSearchRequest_Validate(t *testing.T) {
	assert.Error(t, (&SearchRequest{Query: ""}).Validate())
	assert.Error(t, (&SearchRequest{Query: "   "}).Validate())
	assert.NoError(t, (&SearchRequest{Query: "contrat de bail"}).Validate())

	long := &SearchRequest{Query: strings.Repeat("a", MaxQueryLength+1)}
	assert.ErrorIs(t, long.Validate(), ErrQueryTooLong)
}

func TestSearchRequest_ToOptionsDefaults(t *testing.T) {
	opts := (&SearchRequest{Query: "audience"}).ToOptions()

	assert.True(t, opts.ExpandGraph)
	assert.True(t, opts.Expand.Threads)
	assert.True(t, opts.Expand.Cases)
	assert.False(t, opts.Expand.People)
	assert.Nil(t, opts.Filters)
}

func TestSearchRequest_ToOptionsOverrides(t *testing.T) {
	req := &SearchRequest{
		Query:         "expertise",
		TopK:          10,
		MaxResults:    30,
		PerTypeLimit:  5,
		ExpandGraph:   boolPtr(false),
		ExpandThreads: boolPtr(false),
		ExpandPeople:  boolPtr(true),
	}
	opts := req.ToOptions()

	assert.Equal(t, 10, opts.TopK)
	assert.Equal(t, 30, opts.MaxResults)
	assert.Equal(t, 5, opts.PerTypeLimit)
	assert.False(t, opts.ExpandGraph)
	assert.False(t, opts.Expand.Threads)
	assert.True(t, opts.Expand.Cases)
	assert.True(t, opts.Expand.People)
}

func TestSearchFilters_ToFilters(t *testing.T) {
	var nilFilters *SearchFilters
	assert.Nil(t, nilFilters.ToFilters())
	assert.Nil(t, (&SearchFilters{}).ToFilters())

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filters := (&SearchFilters{Category: "client", DateFrom: &from}).ToFilters()
	require.NotNil(t, filters)
	assert.Equal(t, "client", filters.Category)
	assert.Equal(t, &from, filters.DateFrom)
}

func TestSearchRequest_FiltersPropagate(t *testing.T) {
	req := &SearchRequest{
		Query:   "facture",
		Filters: &SearchFilters{CaseID: "case-7"},
	}
	opts := req.ToOptions()
	require.NotNil(t, opts.Filters)
	assert.Equal(t, "case-7", opts.Filters.CaseID)
}

func TestMetadataSearchRequest_ToOrder(t *testing.T) {
	empty := &MetadataSearchRequest{}
	order, err := empty.ToOrder()
	require.NoError(t, err)
	assert.Nil(t, order)

	req := &MetadataSearchRequest{
		OrderBy: []OrderTerm{
			{Field: "date", Direction: "desc"},
			{Field: "subject"},
		},
	}
	order, err = req.ToOrder()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "d.date DESC", order[0].Render())
	assert.Equal(t, "d.subject ASC", order[1].Render())
}

func TestMetadataSearchRequest_ToOrderRejectsBadTerms(t *testing.T) {
	_, err := (&MetadataSearchRequest{
		OrderBy: []OrderTerm{{Field: "embedding"}},
	}).ToOrder()
	assert.Error(t, err)

	_, err = (&MetadataSearchRequest{
		OrderBy: []OrderTerm{{Field: "date", Direction: "sideways"}},
	}).ToOrder()
	assert.Error(t, err)
}

func TestIngestRequest_Validate(t *testing.T) {
	assert.Error(t, (&IngestRequest{}).Validate())
	assert.NoError(t, (&IngestRequest{Emails: []Email{{SenderEmail: "a@b.fr"}}}).Validate())
}

func TestEmail_ToDocument(t *testing.T) {
	date := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	email := &Email{
		ID:          "ext-1",
		Subject:     "Convocation",
		Body:        "Le tribunal vous convoque.",
		SenderEmail: "greffe@justice.fr",
		Recipients:  []string{"avocat@cabinet.fr"},
		Cc:          []string{"assistante@cabinet.fr"},
		Date:        date,
		ThreadID:    "thread-1",
		MessageID:   "<conv-1>",
		InReplyTo:   "<prev-1>",
	}
	doc := email.ToDocument()

	assert.Equal(t, "ext-1", doc.ID)
	assert.Equal(t, "Convocation", doc.Subject)
	assert.Equal(t, "greffe@justice.fr", doc.SenderEmail)
	assert.Equal(t, []string{"avocat@cabinet.fr"}, doc.Recipients)
	assert.Equal(t, []string{"assistante@cabinet.fr"}, doc.Cc)
	assert.Equal(t, date, doc.Date)
	assert.Equal(t, "thread-1", doc.ThreadID)
	assert.Equal(t, "<conv-1>", doc.MessageID)
	assert.Equal(t, "<prev-1>", doc.InReplyTo)
}
