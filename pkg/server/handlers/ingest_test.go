package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailify/mailgraph/pkg/server/dto"
	"github.com/mailify/mailgraph/pkg/types"
)

type mockIngestClient struct {
	stats    *types.IngestStats
	ingErr   error
	edges    *types.EdgeCounts
	buildErr error

	ingestedDocs []*types.Document
	builtIDs     []string
}

func (m *mockIngestClient) IngestDocument(_ context.Context, _ *types.Document) (string, error) {
	return "", nil
}

func (m *mockIngestClient) IngestBatch(_ context.Context, docs []*types.Document) (*types.IngestStats, error) {
	m.ingestedDocs = docs
	return m.stats, m.ingErr
}

func (m *mockIngestClient) BuildGraph(_ context.Context, documentIDs []string) (*types.EdgeCounts, error) {
	m.builtIDs = documentIDs
	return m.edges, m.buildErr
}

func ingestRouter(h *IngestHandler) *gin.Engine {
	router := gin.New()
	router.POST("/api/emails/ingest", h.Ingest)
	router.POST("/api/graph/build", h.BuildGraph)
	return router
}

func sampleEmails() []dto.Email {
	return []dto.Email{
		{
			Subject:     "Dossier n° 2024-001",
			Body:        "Bonjour Maître,",
			SenderEmail: "marie.durand@client.fr",
			Recipients:  []string{"avocat@cabinet.fr"},
			MessageID:   "<msg-1>",
			ThreadID:    "thread-1",
		},
		{
			Subject:     "Re: Dossier n° 2024-001",
			Body:        "Bien reçu.",
			SenderEmail: "avocat@cabinet.fr",
			Recipients:  []string{"marie.durand@client.fr"},
			MessageID:   "<msg-2>",
			ThreadID:    "thread-1",
			InReplyTo:   "<msg-1>",
		},
	}
}

func TestIngest_OK(t *testing.T) {
	client := &mockIngestClient{
		stats: &types.IngestStats{
			Ingested:    2,
			DocumentIDs: []string{"doc-1", "doc-2"},
		},
	}
	metrics := newRecordedMetrics()
	router := ingestRouter(NewIngestHandler(client, metrics, nil))

	w := postJSON(t, router, "/api/emails/ingest", dto.IngestRequest{Emails: sampleEmails()})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Ingested)
	assert.Equal(t, []string{"doc-1", "doc-2"}, resp.DocumentIDs)
	assert.Nil(t, resp.Edges)

	require.Len(t, client.ingestedDocs, 2)
	assert.Equal(t, "<msg-2>", client.ingestedDocs[1].MessageID)
	assert.Nil(t, client.builtIDs)

	assert.Equal(t, 2, metrics.ingestCounts["ingested"])
	assert.Zero(t, metrics.ingestCounts["failed"])
}

func TestIngest_WithBuildGraph(t *testing.T) {
	client := &mockIngestClient{
		stats: &types.IngestStats{Ingested: 2, DocumentIDs: []string{"doc-1", "doc-2"}},
		edges: &types.EdgeCounts{Thread: 2, Involve: 4},
	}
	router := ingestRouter(NewIngestHandler(client, nil, nil))

	w := postJSON(t, router, "/api/emails/ingest", dto.IngestRequest{
		Emails:     sampleEmails(),
		BuildGraph: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Edges)
	assert.Equal(t, 2, resp.Edges.Thread)
	assert.Equal(t, []string{"doc-1", "doc-2"}, client.builtIDs)
}

func TestIngest_EmptyBatchRejected(t *testing.T) {
	router := ingestRouter(NewIngestHandler(&mockIngestClient{}, nil, nil))

	w := postJSON(t, router, "/api/emails/ingest", map[string]any{"emails": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_StorageErrorIs500(t *testing.T) {
	client := &mockIngestClient{
		stats:  &types.IngestStats{},
		ingErr: types.NewStorageError("create_document", assert.AnError),
	}
	router := ingestRouter(NewIngestHandler(client, nil, nil))

	w := postJSON(t, router, "/api/emails/ingest", dto.IngestRequest{Emails: sampleEmails()})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBuildGraph_WithIDs(t *testing.T) {
	client := &mockIngestClient{
		edges: &types.EdgeCounts{Thread: 2, Reply: 1, Involve: 4, Case: 1},
	}
	router := ingestRouter(NewIngestHandler(client, nil, nil))

	w := postJSON(t, router, "/api/graph/build", dto.BuildGraphRequest{
		DocumentIDs: []string{"doc-1", "doc-2"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BuildGraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Total)
	assert.Equal(t, []string{"doc-1", "doc-2"}, client.builtIDs)
}

func TestBuildGraph_EmptyBodyProcessesAll(t *testing.T) {
	client := &mockIngestClient{edges: &types.EdgeCounts{}}
	router := ingestRouter(NewIngestHandler(client, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/graph/build", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, client.builtIDs)
}
