package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/darukaearth/rag-server/models"
)

// CollectionManager owns named chunk collections: ingestion, inspection, and
// confirm-gated deletion. Adds and deletes on the same collection name are
// mutually exclusive.
type CollectionManager struct {
	store    VectorStore
	embedder Embedder
	chunker  *Chunker

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCollectionManager wires the chunker, embedder, and vector store together.
func NewCollectionManager(store VectorStore, embedder Embedder, chunker *Chunker) *CollectionManager {
	return &CollectionManager{
		store:    store,
		embedder: embedder,
		chunker:  chunker,
		locks:    make(map[string]*sync.Mutex),
	}
}

// nameLock returns the mutex guarding one collection name.
func (m *CollectionManager) nameLock(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[name]
	if !ok {
		l = &sync.Mutex{}
		m.locks[name] = l
	}
	return l
}

// SanitizeCollectionName normalizes a user-supplied collection name.
func SanitizeCollectionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return name
}

// IngestText chunks, embeds, and stores one piece of text. Every chunk is
// embedded before anything is written, so a failed embedding aborts the batch
// with no partial collection state. Returns how many chunks were stored.
func (m *CollectionManager) IngestText(ctx context.Context, collection, title, text string, base map[string]interface{}) (int, error) {
	collection = SanitizeCollectionName(collection)
	if collection == "" {
		return 0, fmt.Errorf("%w: collection name must not be empty", models.ErrValidation)
	}

	chunks, err := m.chunker.Chunk(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrIngestion, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docID := uuid.New().String()[:8]
	records := make([]Record, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := m.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("could not embed chunk %d: %w", i, err)
		}
		meta := map[string]interface{}{
			"source":       collection,
			"title":        title,
			"document_id":  docID,
			"chunk_index":  i,
			"total_chunks": len(chunks),
			"char_count":   len(chunk),
		}
		for k, v := range base {
			meta[k] = v
		}
		records = append(records, Record{
			ID:        fmt.Sprintf("%s_chunk_%d", docID, i),
			Text:      chunk,
			Embedding: embedding,
			Metadata:  meta,
		})
	}

	lock := m.nameLock(collection)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if err := m.store.AddRecords(ctx, collection, records); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	log.Printf("SERVICE: Ingested %d chunks into collection %q (doc %s)", len(records), collection, docID)
	return len(records), nil
}

// IngestPages ingests page-aware content (e.g. an extracted PDF), carrying the
// page number into every chunk's metadata. Same all-or-nothing batch contract
// as IngestText. The returned document id prefixes every chunk id and is
// stored as each chunk's document_id.
func (m *CollectionManager) IngestPages(ctx context.Context, collection, source string, pages []Page, base map[string]interface{}) (int, string, error) {
	collection = SanitizeCollectionName(collection)
	if collection == "" {
		return 0, "", fmt.Errorf("%w: collection name must not be empty", models.ErrValidation)
	}

	docID := uuid.New().String()[:8]
	var records []Record
	for _, page := range pages {
		chunks, err := m.chunker.Chunk(page.Content)
		if err != nil {
			return 0, "", fmt.Errorf("%w: page %d: %v", models.ErrIngestion, page.Number, err)
		}
		for _, chunk := range chunks {
			i := len(records)
			embedding, err := m.embedder.Embed(ctx, chunk)
			if err != nil {
				return 0, "", fmt.Errorf("could not embed chunk %d of %s: %w", i, source, err)
			}
			meta := map[string]interface{}{
				"source":      source,
				"page":        page.Number,
				"document_id": docID,
				"chunk_index": i,
				"char_count":  len(chunk),
			}
			for k, v := range base {
				meta[k] = v
			}
			records = append(records, Record{
				ID:        fmt.Sprintf("%s_chunk_%d", docID, i),
				Text:      chunk,
				Embedding: embedding,
				Metadata:  meta,
			})
		}
	}
	if len(records) == 0 {
		return 0, docID, nil
	}
	for i := range records {
		records[i].Metadata["total_chunks"] = len(records)
	}

	lock := m.nameLock(collection)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.EnsureCollection(ctx, collection); err != nil {
		return 0, "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if err := m.store.AddRecords(ctx, collection, records); err != nil {
		return 0, "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	log.Printf("SERVICE: Ingested %d chunks from %s into collection %q (doc %s)", len(records), source, collection, docID)
	return len(records), docID, nil
}

// List returns every collection name.
func (m *CollectionManager) List(ctx context.Context) ([]string, error) {
	names, err := m.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	return names, nil
}

// Inspect returns the chunks and metadata of one collection.
func (m *CollectionManager) Inspect(ctx context.Context, name string) (*models.CollectionInfoResponse, error) {
	name = SanitizeCollectionName(name)
	ok, err := m.store.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", models.ErrNotFound, name)
	}

	records, err := m.store.GetAll(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	chunks := make([]models.ChunkPayload, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, models.ChunkPayload{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
		})
	}
	return &models.CollectionInfoResponse{
		Name:   name,
		Count:  len(chunks),
		Chunks: chunks,
	}, nil
}

// Stats summarizes chunk counts across all collections.
func (m *CollectionManager) Stats(ctx context.Context) (*models.StatsResponse, error) {
	names, err := m.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	perCollection := make(map[string]int, len(names))
	total := 0
	for _, name := range names {
		count, err := m.store.Count(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}
		perCollection[name] = count
		total += count
	}
	return &models.StatsResponse{
		TotalCollections:    len(names),
		TotalChunks:         total,
		Collections:         names,
		ChunksPerCollection: perCollection,
	}, nil
}

// Delete removes a collection. Refuses without confirm, leaving the collection
// unchanged, and reports NotFound for unknown names.
func (m *CollectionManager) Delete(ctx context.Context, name string, confirm bool) error {
	name = SanitizeCollectionName(name)
	if !confirm {
		return fmt.Errorf("%w: deleting collection %q requires confirm=true", models.ErrPrecondition, name)
	}

	lock := m.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	ok, err := m.store.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if !ok {
		return fmt.Errorf("%w: collection %q", models.ErrNotFound, name)
	}
	if err := m.store.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	log.Printf("SERVICE: Deleted collection %q", name)
	return nil
}

// ClearAll deletes every collection and returns the names that were removed.
func (m *CollectionManager) ClearAll(ctx context.Context, confirm bool) ([]string, error) {
	if !confirm {
		return nil, fmt.Errorf("%w: clearing all collections requires confirm=true", models.ErrPrecondition)
	}
	names, err := m.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	cleared := make([]string, 0, len(names))
	for _, name := range names {
		lock := m.nameLock(name)
		lock.Lock()
		err := m.store.DeleteCollection(ctx, name)
		lock.Unlock()
		if err != nil {
			return cleared, fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}
		cleared = append(cleared, name)
	}
	log.Printf("SERVICE: Cleared %d collections", len(cleared))
	return cleared, nil
}
