package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailify/mailgraph/pkg/types"
)

type mockExpander struct {
	threadDocs []*types.Document
	caseDocs   []*types.Document
	personDocs []*types.Document

	threadErr error
	caseErr   error
	personErr error

	caseLimit   int
	personLimit int
}

func (m *mockExpander) ThreadNeighbors(_ context.Context, _ []string) ([]*types.Document, error) {
	return m.threadDocs, m.threadErr
}

func (m *mockExpander) CaseNeighbors(_ context.Context, _ []string, limit int) ([]*types.Document, error) {
	m.caseLimit = limit
	return m.caseDocs, m.caseErr
}

func (m *mockExpander) PersonNeighbors(_ context.Context, _ []string, limit int) ([]*types.Document, error) {
	m.personLimit = limit
	return m.personDocs, m.personErr
}

func doc(id string) *types.Document {
	return &types.Document{ID: id, Subject: "subject " + id}
}

func TestExpand_EmptySeeds(t *testing.T) {
	engine := NewEngine(&mockExpander{}, nil)
	results, err := engine.Expand(context.Background(), nil, DefaultExpandOptions(), 3)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestExpand_PrecedenceOrder(t *testing.T) {
	expander := &mockExpander{
		threadDocs: []*types.Document{doc("t1"), doc("t2")},
		caseDocs:   []*types.Document{doc("c1")},
		personDocs: []*types.Document{doc("p1")},
	}
	engine := NewEngine(expander, nil)

	results, err := engine.Expand(context.Background(), []string{"seed-1"},
		ExpandOptions{Threads: true, Cases: true, People: true}, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Threads before cases before people, whatever order the queries finish in.
	assert.Equal(t, "t1", results[0].Document.ID)
	assert.Equal(t, types.ThreadMemberContext, results[0].ContextType)
	assert.Equal(t, "t2", results[1].Document.ID)
	assert.Equal(t, "c1", results[2].Document.ID)
	assert.Equal(t, types.SameCaseContext, results[2].ContextType)
	assert.Equal(t, "p1", results[3].Document.ID)
	assert.Equal(t, types.SamePersonContext, results[3].ContextType)
}

func TestExpand_SeedsAndEarlierTypesWinDedup(t *testing.T) {
	expander := &mockExpander{
		threadDocs: []*types.Document{doc("seed-1"), doc("shared")},
		caseDocs:   []*types.Document{doc("shared"), doc("c1")},
		personDocs: []*types.Document{doc("c1"), doc("p1")},
	}
	engine := NewEngine(expander, nil)

	results, err := engine.Expand(context.Background(), []string{"seed-1"},
		ExpandOptions{Threads: true, Cases: true, People: true}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// seed-1 never re-enters; "shared" keeps its thread_member tag.
	assert.Equal(t, "shared", results[0].Document.ID)
	assert.Equal(t, types.ThreadMemberContext, results[0].ContextType)
	assert.Equal(t, "c1", results[1].Document.ID)
	assert.Equal(t, types.SameCaseContext, results[1].ContextType)
	assert.Equal(t, "p1", results[2].Document.ID)
	assert.Equal(t, types.SamePersonContext, results[2].ContextType)
}

func TestExpand_CapScalesWithSeedCount(t *testing.T) {
	expander := &mockExpander{}
	engine := NewEngine(expander, nil)

	_, err := engine.Expand(context.Background(), []string{"a", "b", "c"},
		ExpandOptions{Cases: true, People: true}, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, expander.caseLimit)
	assert.Equal(t, 12, expander.personLimit)
}

func TestExpand_DefaultPerTypeLimit(t *testing.T) {
	expander := &mockExpander{}
	engine := NewEngine(expander, nil)

	_, err := engine.Expand(context.Background(), []string{"a"},
		ExpandOptions{Cases: true}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPerTypeLimit, expander.caseLimit)
}

func TestExpand_DisabledTypesNotQueried(t *testing.T) {
	expander := &mockExpander{
		threadDocs: []*types.Document{doc("t1")},
		personDocs: []*types.Document{doc("p1")},
	}
	engine := NewEngine(expander, nil)

	results, err := engine.Expand(context.Background(), []string{"seed-1"},
		DefaultExpandOptions(), 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].Document.ID)
	assert.Zero(t, expander.personLimit)
}

func TestExpand_StoreErrorAborts(t *testing.T) {
	expander := &mockExpander{
		threadDocs: []*types.Document{doc("t1")},
		caseErr:    types.NewStorageError("case_neighbors", assert.AnError),
	}
	engine := NewEngine(expander, nil)

	results, err := engine.Expand(context.Background(), []string{"seed-1"},
		ExpandOptions{Threads: true, Cases: true}, 3)
	require.Error(t, err)
	assert.Nil(t, results)

	var storageErr *types.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestExpand_SkipsNilAndEmptyDocs(t *testing.T) {
	expander := &mockExpander{
		threadDocs: []*types.Document{nil, {}, doc("t1")},
	}
	engine := NewEngine(expander, nil)

	results, err := engine.Expand(context.Background(), []string{"seed-1"},
		ExpandOptions{Threads: true}, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].Document.ID)
}
