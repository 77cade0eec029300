package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/darukaearth/rag-server/models"
)

// RetrievedDocument is one chunk returned from a similarity lookup.
type RetrievedDocument struct {
	Content  string
	Source   string
	ChunkID  string
	Score    float64
	Page     int
	Metadata map[string]interface{}
}

// RetrievalResult is a ranked sequence of retrieved chunks from exactly one
// collection, descending by score.
type RetrievalResult struct {
	Collection string
	Documents  []RetrievedDocument
}

// Retriever embeds queries and runs top-K similarity lookups against a named
// collection.
type Retriever struct {
	store    VectorStore
	embedder Embedder
}

// NewRetriever builds a retriever over the given store and embedder.
func NewRetriever(store VectorStore, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query once and returns the topK most similar chunks.
// topK is clamped to the collection's chunk count; an empty collection yields
// an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, collection, query string, topK int) (*RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query text must not be empty", models.ErrValidation)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", models.ErrValidation, topK)
	}
	collection = SanitizeCollectionName(collection)

	ok, err := r.store.HasCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", models.ErrNotFound, collection)
	}

	count, err := r.store.Count(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if count == 0 {
		return &RetrievalResult{Collection: collection}, nil
	}
	if topK > count {
		topK = count
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	scored, err := r.store.Query(ctx, collection, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	result := &RetrievalResult{Collection: collection}
	for _, rec := range scored {
		result.Documents = append(result.Documents, RetrievedDocument{
			Content:  rec.Text,
			Source:   metadataString(rec.Metadata, "source", "unknown"),
			ChunkID:  rec.ID,
			Score:    rec.Score,
			Page:     metadataInt(rec.Metadata, "page"),
			Metadata: rec.Metadata,
		})
	}
	log.Printf("SERVICE: Retrieved %d documents from %q", len(result.Documents), collection)
	return result, nil
}

// FormatContext renders retrieved documents as a numbered context block with
// source citations for the LLM prompt.
func FormatContext(result *RetrievalResult) string {
	if result == nil || len(result.Documents) == 0 {
		return "No relevant documents found."
	}
	parts := make([]string, 0, len(result.Documents))
	for i, doc := range result.Documents {
		sourceInfo := fmt.Sprintf("[Source: %s", doc.Source)
		if doc.Page > 0 {
			sourceInfo += fmt.Sprintf(", Page %d", doc.Page)
		}
		sourceInfo += "]"
		parts = append(parts, fmt.Sprintf("--- Document %d %s ---\n%s", i+1, sourceInfo, doc.Content))
	}
	return strings.Join(parts, "\n\n")
}

// SourcesForResponse converts retrieved documents into response payloads,
// truncating long content for readability.
func SourcesForResponse(result *RetrievalResult) []models.SourceDocument {
	if result == nil {
		return []models.SourceDocument{}
	}
	sources := make([]models.SourceDocument, 0, len(result.Documents))
	for _, doc := range result.Documents {
		sources = append(sources, models.SourceDocument{
			Content: TruncateRunes(doc.Content, 500),
			Source:  doc.Source,
			Page:    doc.Page,
			ChunkID: doc.ChunkID,
			Score:   doc.Score,
		})
	}
	return sources
}

// TruncateRunes shortens s to at most n runes, marking the cut with an
// ellipsis. Cutting on rune boundaries keeps multi-byte characters intact.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func metadataString(meta map[string]interface{}, key, fallback string) string {
	if meta == nil {
		return fallback
	}
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func metadataInt(meta map[string]interface{}, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
