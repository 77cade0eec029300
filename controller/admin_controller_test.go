package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darukaearth/rag-server/models"
)

func TestListCollections(t *testing.T) {
	s := newTestServer("ok")
	s.seed(t, "daruka_documents", "alpha")
	s.seed(t, "marine_docs", "beta")

	rec := s.doJSON(t, http.MethodGet, "/api/v1/collections", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CollectionListResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Total)
	assert.ElementsMatch(t, []string{"daruka_documents", "marine_docs"}, resp.Collections)
}

func TestInspectCollection(t *testing.T) {
	s := newTestServer("ok")
	s.seed(t, "daruka_documents", "alpha", "beta")

	rec := s.doJSON(t, http.MethodGet, "/api/v1/collections/daruka_documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CollectionInfoResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "daruka_documents", resp.Name)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Chunks, 2)
	assert.Equal(t, "alpha", resp.Chunks[0].Text)
}

func TestInspectUnknownCollectionIs404(t *testing.T) {
	s := newTestServer("ok")
	rec := s.doJSON(t, http.MethodGet, "/api/v1/collections/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCollectionConfirmGate(t *testing.T) {
	s := newTestServer("ok")
	s.seed(t, "daruka_documents", "alpha")

	rec := s.doJSON(t, http.MethodDelete, "/api/v1/collections/daruka_documents", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	// The refused delete left the collection intact.
	rec = s.doJSON(t, http.MethodGet, "/api/v1/collections/daruka_documents", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.doJSON(t, http.MethodDelete, "/api/v1/collections/daruka_documents?confirm=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.doJSON(t, http.MethodGet, "/api/v1/collections/daruka_documents", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUnknownCollectionIs404(t *testing.T) {
	s := newTestServer("ok")
	rec := s.doJSON(t, http.MethodDelete, "/api/v1/collections/missing?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer("ok")
	s.seed(t, "daruka_documents", "alpha", "beta")
	s.seed(t, "marine_docs", "gamma")

	rec := s.doJSON(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StatsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.TotalCollections)
	assert.Equal(t, 3, resp.TotalChunks)
	assert.Equal(t, 2, resp.ChunksPerCollection["daruka_documents"])
}

func TestAdminClearAll(t *testing.T) {
	s := newTestServer("ok")
	s.seed(t, "daruka_documents", "alpha")
	s.seed(t, "marine_docs", "beta")

	rec := s.doJSON(t, http.MethodDelete, "/api/v1/admin/clear", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = s.doJSON(t, http.MethodDelete, "/api/v1/admin/clear?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ClearResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.CollectionsCleared, 2)

	var list models.CollectionListResponse
	rec = s.doJSON(t, http.MethodGet, "/api/v1/collections", nil)
	decodeBody(t, rec, &list)
	assert.Equal(t, 0, list.Total)
}
