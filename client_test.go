package mailgraph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailify/mailgraph/pkg/checkpoint"
	"github.com/mailify/mailgraph/pkg/enrich"
	"github.com/mailify/mailgraph/pkg/search"
	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// mockGraphStore is an in-memory store.GraphStore for facade tests.
type mockGraphStore struct {
	docs    map[string]*types.Document
	persons map[string]*types.Person
	cases   map[string]*types.Case
	edges   map[string]struct{}
	nextID  int

	createDocErr error
	vectorDocs   []store.ScoredDocument
	statsErr     error
	closed       bool

	queryOrder []store.OrderBy
	queryLimit int
}

func newMockGraphStore() *mockGraphStore {
	return &mockGraphStore{
		docs:    map[string]*types.Document{},
		persons: map[string]*types.Person{},
		cases:   map[string]*types.Case{},
		edges:   map[string]struct{}{},
	}
}

func (m *mockGraphStore) CreateDocument(_ context.Context, doc *types.Document) (string, error) {
	if m.createDocErr != nil {
		return "", m.createDocErr
	}
	m.nextID++
	id := fmt.Sprintf("doc-%d", m.nextID)
	stored := *doc
	stored.ID = id
	m.docs[id] = &stored
	return id, nil
}

func (m *mockGraphStore) GetDocuments(_ context.Context, ids []string) ([]*types.Document, error) {
	if len(ids) == 0 {
		docs := make([]*types.Document, 0, len(m.docs))
		for _, d := range m.docs {
			docs = append(docs, d)
		}
		return docs, nil
	}
	var docs []*types.Document
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (m *mockGraphStore) FindDocumentByMessageID(_ context.Context, messageID string) (string, error) {
	for id, d := range m.docs {
		if d.MessageID == messageID {
			return id, nil
		}
	}
	return "", types.ErrNotFound
}

func (m *mockGraphStore) QueryDocuments(_ context.Context, _ *store.Predicate, limit int, order []store.OrderBy) ([]*types.Document, error) {
	m.queryLimit = limit
	m.queryOrder = order
	return nil, nil
}

func (m *mockGraphStore) FindPersonByEmail(_ context.Context, email string) (*types.Person, error) {
	if p, ok := m.persons[email]; ok {
		return p, nil
	}
	return nil, types.ErrNotFound
}

func (m *mockGraphStore) CreatePerson(_ context.Context, person *types.Person) (string, error) {
	m.nextID++
	id := fmt.Sprintf("person-%d", m.nextID)
	stored := *person
	stored.ID = id
	m.persons[person.Email] = &stored
	return id, nil
}

func (m *mockGraphStore) FindCaseByReference(_ context.Context, reference string) (*types.Case, error) {
	if c, ok := m.cases[reference]; ok {
		return c, nil
	}
	return nil, types.ErrNotFound
}

func (m *mockGraphStore) CreateCase(_ context.Context, c *types.Case) (string, error) {
	m.nextID++
	id := fmt.Sprintf("case-%d", m.nextID)
	stored := *c
	stored.ID = id
	m.cases[c.Reference] = &stored
	return id, nil
}

func (m *mockGraphStore) Relate(_ context.Context, fromID string, edgeType types.EdgeType, toID string) error {
	key := fromID + "|" + string(edgeType) + "|" + toID
	if _, dup := m.edges[key]; dup {
		return types.NewConstraintError("relate", nil)
	}
	m.edges[key] = struct{}{}
	return nil
}

func (m *mockGraphStore) ThreadNeighbors(_ context.Context, _ []string) ([]*types.Document, error) {
	return nil, nil
}

func (m *mockGraphStore) CaseNeighbors(_ context.Context, _ []string, _ int) ([]*types.Document, error) {
	return nil, nil
}

func (m *mockGraphStore) PersonNeighbors(_ context.Context, _ []string, _ int) ([]*types.Document, error) {
	return nil, nil
}

func (m *mockGraphStore) VectorSearch(_ context.Context, _ []float32, limit int, _ *store.Predicate) ([]store.ScoredDocument, error) {
	if len(m.vectorDocs) > limit {
		return m.vectorDocs[:limit], nil
	}
	return m.vectorDocs, nil
}

func (m *mockGraphStore) CreateIndices(_ context.Context) error { return nil }

func (m *mockGraphStore) Stats(_ context.Context) (*store.GraphStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return &store.GraphStats{Documents: len(m.docs), Persons: len(m.persons), Cases: len(m.cases)}, nil
}

func (m *mockGraphStore) Close(_ context.Context) error {
	m.closed = true
	return nil
}

type mockEmbedder struct {
	err   error
	calls int
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (m *mockEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) Close() error    { return nil }

func email(messageID, subject string) *types.Document {
	return &types.Document{
		Subject:     subject,
		Body:        "Bonjour Maître, veuillez trouver ci-joint les pièces du dossier.",
		SenderEmail: "marie.durand@client.fr",
		SenderName:  "Marie Durand",
		Recipients:  []string{"avocat@cabinet.fr"},
		Date:        time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
		MessageID:   messageID,
	}
}

func newTestClient(t *testing.T, graphStore store.GraphStore, embedder *mockEmbedder, ledger *checkpoint.Ledger) *Client {
	t.Helper()
	client, err := NewClient(graphStore, embedder, enrich.NewEnricher(enrich.WithClientDomains("client.fr")), ledger, nil, nil)
	require.NoError(t, err)
	return client
}

func TestIngestDocument_EnrichesEmbedsAndStores(t *testing.T) {
	graphStore := newMockGraphStore()
	embedder := &mockEmbedder{}
	client := newTestClient(t, graphStore, embedder, nil)

	doc := email("<msg-1>", "Dossier n° 2024-001 - pièces")
	id, err := client.IngestDocument(context.Background(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored := graphStore.docs[id]
	require.NotNil(t, stored)
	assert.Equal(t, "2024-001", stored.CaseID)
	assert.Equal(t, enrich.CategoryClient, stored.Category)
	assert.Equal(t, []float32{0.1, 0.2}, stored.Embedding)

	require.Len(t, embedder.texts, 1)
	assert.Equal(t, "Sujet: Dossier n° 2024-001 - pièces\n\nCorps: "+doc.Body, embedder.texts[0])
}

func TestIngestDocument_ValidationFailures(t *testing.T) {
	client := newTestClient(t, newMockGraphStore(), &mockEmbedder{}, nil)

	_, err := client.IngestDocument(context.Background(), nil)
	require.Error(t, err)

	_, err = client.IngestDocument(context.Background(), &types.Document{SenderEmail: "a@b.fr"})
	assert.ErrorIs(t, err, types.ErrEmptyContent)

	_, err = client.IngestDocument(context.Background(), &types.Document{Subject: "Bonjour"})
	assert.ErrorIs(t, err, types.ErrEmptySender)
}

func TestIngestDocument_LedgerSkipsDuplicate(t *testing.T) {
	ledger, err := checkpoint.OpenInMemory()
	require.NoError(t, err)
	defer ledger.Close()

	graphStore := newMockGraphStore()
	embedder := &mockEmbedder{}
	client := newTestClient(t, graphStore, embedder, ledger)

	first, err := client.IngestDocument(context.Background(), email("<msg-dup>", "Premier envoi"))
	require.NoError(t, err)

	second, err := client.IngestDocument(context.Background(), email("<msg-dup>", "Renvoi du même message"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, graphStore.docs, 1)
	assert.Equal(t, 1, embedder.calls)
}

func TestIngestBatch_CountsOutcomes(t *testing.T) {
	ledger, err := checkpoint.OpenInMemory()
	require.NoError(t, err)
	defer ledger.Close()

	client := newTestClient(t, newMockGraphStore(), &mockEmbedder{}, ledger)

	docs := []*types.Document{
		email("<batch-1>", "Premier"),
		email("<batch-1>", "Doublon du premier"),
		{Subject: "sans expéditeur"},
		email("<batch-2>", "Second"),
	}
	stats, err := client.IngestBatch(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Ingested)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Failed)
	assert.Len(t, stats.DocumentIDs, 2)
}

func TestIngestBatch_StorageErrorAborts(t *testing.T) {
	graphStore := newMockGraphStore()
	graphStore.createDocErr = types.NewStorageError("create_document", assert.AnError)
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	stats, err := client.IngestBatch(context.Background(), []*types.Document{
		email("<s-1>", "Un"),
		email("<s-2>", "Deux"),
	})
	require.Error(t, err)

	var storageErr *types.StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Zero(t, stats.Ingested)
}

func TestIngestBatch_EmbeddingErrorCountedNotFatal(t *testing.T) {
	client := newTestClient(t, newMockGraphStore(), &mockEmbedder{err: types.NewProviderError("openai", "boom", nil)}, nil)

	stats, err := client.IngestBatch(context.Background(), []*types.Document{
		email("<e-1>", "Un"),
		email("<e-2>", "Deux"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.Ingested)
}

func TestIngestBatch_ContextCancelled(t *testing.T) {
	client := newTestClient(t, newMockGraphStore(), &mockEmbedder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.IngestBatch(ctx, []*types.Document{email("<c-1>", "Un")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildGraph_DelegatesToBuilder(t *testing.T) {
	graphStore := newMockGraphStore()
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	ids := make([]string, 0, 2)
	for _, doc := range []*types.Document{
		email("<g-1>", "Un"),
		email("<g-2>", "Deux"),
	} {
		doc.ThreadID = "thread-1"
		id, err := client.IngestDocument(context.Background(), doc)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	counts, err := client.BuildGraph(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Thread)
	assert.Equal(t, 4, counts.Involve)
	assert.Zero(t, counts.Skipped)
}

func TestHybridSearch_AppliesConfigDefaults(t *testing.T) {
	graphStore := newMockGraphStore()
	graphStore.vectorDocs = []store.ScoredDocument{
		{Document: &types.Document{ID: "doc-1", Subject: "Audience"}, Score: 0.9},
	}
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	results, err := client.HybridSearch(context.Background(), "audience", search.Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].DocumentID)
	assert.Equal(t, types.DirectMatch, results[0].ContextType)
}

func TestSearchByMetadata_OrderPassedThrough(t *testing.T) {
	graphStore := newMockGraphStore()
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	byPriority, err := store.NewOrderBy("priority", store.SortDescending)
	require.NoError(t, err)

	_, err = client.SearchByMetadata(context.Background(), &search.Filters{Category: "client"}, 10, []store.OrderBy{byPriority})
	require.NoError(t, err)

	assert.Equal(t, 10, graphStore.queryLimit)
	require.Len(t, graphStore.queryOrder, 1)
	assert.Equal(t, "d.priority DESC", graphStore.queryOrder[0].Render())
}

func TestSearchByMetadata_DefaultOrderNewestFirst(t *testing.T) {
	graphStore := newMockGraphStore()
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	_, err := client.SearchByMetadata(context.Background(), nil, 10, nil)
	require.NoError(t, err)

	require.Len(t, graphStore.queryOrder, 1)
	assert.Equal(t, "d.date DESC", graphStore.queryOrder[0].Render())
}

func TestStatsAndClose(t *testing.T) {
	graphStore := newMockGraphStore()
	client := newTestClient(t, graphStore, &mockEmbedder{}, nil)

	_, err := client.IngestDocument(context.Background(), email("<st-1>", "Un"))
	require.NoError(t, err)

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)

	require.NoError(t, client.Close(context.Background()))
	assert.True(t, graphStore.closed)
}
