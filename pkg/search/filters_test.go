package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters_Empty(t *testing.T) {
	var nilFilters *Filters
	assert.True(t, nilFilters.Empty())
	assert.True(t, (&Filters{}).Empty())
	assert.False(t, (&Filters{Category: "client"}).Empty())
	assert.False(t, (&Filters{Tags: []string{"urgent"}}).Empty())

	from := time.Now()
	assert.False(t, (&Filters{DateFrom: &from}).Empty())
}

func TestFilters_PredicateBindsAllValues(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	f := &Filters{
		Category:    "client",
		ClientID:    "client-42",
		CaseID:      "case-7",
		SenderEmail: "marie.durand@client.fr",
		DateFrom:    &from,
		DateTo:      &to,
		Tags:        []string{"urgent", "facture"},
	}

	pred := f.Predicate()
	require.NotNil(t, pred)
	assert.Len(t, pred.Clauses, 7)

	// Values travel only through the parameter map, never in clause text.
	for _, clause := range pred.Clauses {
		assert.NotContains(t, clause, "client-42")
		assert.NotContains(t, clause, "marie.durand@client.fr")
	}
	assert.Equal(t, "client", pred.Params["category"])
	assert.Equal(t, "client-42", pred.Params["client_id"])
	assert.Equal(t, "case-7", pred.Params["case_id"])
	assert.Equal(t, "marie.durand@client.fr", pred.Params["sender_email"])
	assert.Equal(t, from, pred.Params["date_from"])
	assert.Equal(t, to, pred.Params["date_to"])
	assert.Equal(t, []string{"urgent", "facture"}, pred.Params["tags"])
}

func TestFilters_PredicateNilSafe(t *testing.T) {
	var f *Filters
	pred := f.Predicate()
	require.NotNil(t, pred)
	assert.True(t, pred.Empty())
	assert.Equal(t, "", pred.WhereClause())
}

func TestFilters_PartialPredicate(t *testing.T) {
	f := &Filters{Category: "tribunal"}
	pred := f.Predicate()
	require.Len(t, pred.Clauses, 1)
	assert.Equal(t, "WHERE d.category = $category", pred.WhereClause())
}
