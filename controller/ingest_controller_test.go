package controller

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darukaearth/rag-server/models"
)

func TestIngestTextStoresChunks(t *testing.T) {
	s := newTestServer("ok")

	rec := s.doJSON(t, http.MethodPost, "/api/v1/ingest/text", models.TextIngestRequest{
		Collection: "Website Content",
		Contents: []models.TextContent{
			{Content: "Darukaa.Earth builds dMRV tooling for blue carbon projects.", Title: "About"},
			{Content: "Bioacoustic sensors stream audio to species classifiers."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TextIngestResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "website_content", resp.Collection)
	assert.Equal(t, 2, resp.ChunksAdded)

	inspect := s.doJSON(t, http.MethodGet, "/api/v1/collections/website_content", nil)
	require.Equal(t, http.StatusOK, inspect.Code)

	var info models.CollectionInfoResponse
	decodeBody(t, inspect, &info)
	require.Equal(t, 2, info.Count)
	assert.Equal(t, "About", info.Chunks[0].Metadata["title"])
	assert.Equal(t, "website", info.Chunks[0].Metadata["type"])
	// Untitled items get a positional title.
	assert.Equal(t, "Content 2", info.Chunks[1].Metadata["title"])
}

func TestIngestTextMissingCollectionIs400(t *testing.T) {
	s := newTestServer("ok")
	rec := s.doJSON(t, http.MethodPost, "/api/v1/ingest/text", map[string]interface{}{
		"contents": []map[string]string{{"content": "some text"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestTextAllWhitespaceIs400(t *testing.T) {
	s := newTestServer("ok")
	rec := s.doJSON(t, http.MethodPost, "/api/v1/ingest/text", models.TextIngestRequest{
		Collection: "docs",
		Contents:   []models.TextContent{{Content: "   \n  "}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	s := newTestServer("ok")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.docx")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a pdf"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestUploadMissingFileIs400(t *testing.T) {
	s := newTestServer("ok")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMalformedPDFIs422(t *testing.T) {
	s := newTestServer("ok")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "broken.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-garbage that is not parseable"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
