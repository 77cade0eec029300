package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/darukaearth/rag-server/config"
	"github.com/darukaearth/rag-server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is an in-memory services.VectorStore for handler tests.
type memStore struct {
	mu          sync.Mutex
	collections map[string][]services.Record
}

func newMemStore() *memStore {
	return &memStore{collections: make(map[string][]services.Record)}
}

func (m *memStore) EnsureCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = []services.Record{}
	}
	return nil
}

func (m *memStore) HasCollection(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *memStore) AddRecords(_ context.Context, collection string, records []services.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], records...)
	return nil
}

func (m *memStore) Query(_ context.Context, collection string, _ []float32, topK int) ([]services.ScoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.collections[collection]
	if topK < len(records) {
		records = records[:topK]
	}
	scored := make([]services.ScoredRecord, 0, len(records))
	for i, r := range records {
		scored = append(scored, services.ScoredRecord{Record: r, Score: 1.0 - float64(i)*0.1})
	}
	return scored, nil
}

func (m *memStore) GetAll(_ context.Context, collection string) ([]services.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collections[collection], nil
}

func (m *memStore) Count(_ context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection]), nil
}

func (m *memStore) ListCollections(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	return names, nil
}

func (m *memStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *memStore) DeleteWhere(_ context.Context, collection, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.collections[collection][:0]
	for _, r := range m.collections[collection] {
		if v, ok := r.Metadata[field].(string); ok && v == value {
			continue
		}
		kept = append(kept, r)
	}
	m.collections[collection] = kept
	return nil
}

// stubEmbedder returns a constant vector.
type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

// stubLLM replies with a canned completion.
type stubLLM struct {
	response string
}

func (s *stubLLM) Complete(context.Context, string, string, float32) (string, error) {
	return s.response, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultCollection:  "daruka_documents",
		ProjectsCollection: "daruka_projects",
		DefaultTopK:        5,
		MatchThreshold:     0.6,
		HistoryWindow:      6,
		MaxSessionsPerSite: 100,
		ChunkSize:          800,
		ChunkOverlap:       150,
	}
}

// testServer wires real services over in-memory fakes behind a gin router
// with the production route layout.
type testServer struct {
	router   *gin.Engine
	store    *memStore
	sessions *services.SessionStore
}

func newTestServer(llmResponse string) *testServer {
	cfg := testConfig()
	store := newMemStore()
	embedder := stubEmbedder{}
	llm := &stubLLM{response: llmResponse}

	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	manager := services.NewCollectionManager(store, embedder, chunker)
	retriever := services.NewRetriever(store, embedder)
	composer := services.NewAnswerComposer(llm)
	sessions := services.NewSessionStore(cfg.MaxSessionsPerSite, cfg.HistoryWindow)
	matcher := services.NewProjectMatcher(store, embedder, llm, cfg.ProjectsCollection, cfg.MatchThreshold)

	rag := NewRAGController(cfg, retriever, composer, sessions, matcher)
	ingest := NewIngestController(cfg, manager)
	admin := NewAdminController(manager)
	sess := NewSessionController(sessions)

	router := gin.New()
	api := router.Group("/api/v1")
	{
		api.POST("/query", rag.Query)
		api.POST("/pitch", rag.Pitch)
		api.POST("/projects", rag.SeedProject)
		api.POST("/ingest/text", ingest.IngestText)
		api.POST("/upload", ingest.Upload)
		api.GET("/collections", admin.ListCollections)
		api.GET("/collections/:name", admin.InspectCollection)
		api.DELETE("/collections/:name", admin.DeleteCollection)
		api.GET("/stats", admin.Stats)
		api.DELETE("/admin/clear", admin.ClearAll)
		api.GET("/sessions", sess.List)
		api.GET("/sessions/:id", sess.Get)
		api.DELETE("/sessions/:id", sess.Clear)
		api.DELETE("/sessions", sess.ClearAll)
	}

	return &testServer{router: router, store: store, sessions: sessions}
}

func (s *testServer) seed(t *testing.T, collection string, texts ...string) {
	t.Helper()
	require.NoError(t, s.store.EnsureCollection(context.Background(), collection))
	records := make([]services.Record, 0, len(texts))
	for i, text := range texts {
		records = append(records, services.Record{
			ID:        collection + "_chunk_" + string(rune('0'+i)),
			Text:      text,
			Embedding: []float32{0.1, 0.2, 0.3},
			Metadata:  map[string]interface{}{"source": collection},
		})
	}
	require.NoError(t, s.store.AddRecords(context.Background(), collection, records))
}

func (s *testServer) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
