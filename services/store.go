package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// Record is one stored chunk with its embedding and metadata.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]interface{}
}

// ScoredRecord is a Record plus its similarity to a query embedding, in [0,1]
// with higher meaning more similar.
type ScoredRecord struct {
	Record
	Score float64
}

// VectorStore is the storage collaborator behind collections, retrieval, and
// project matching. The production implementation is ChromaStore.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string) error
	HasCollection(ctx context.Context, name string) (bool, error)
	AddRecords(ctx context.Context, collection string, records []Record) error
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]ScoredRecord, error)
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Count(ctx context.Context, collection string) (int, error)
	ListCollections(ctx context.Context) ([]string, error)
	DeleteCollection(ctx context.Context, name string) error
	DeleteWhere(ctx context.Context, collection, field, value string) error
}

// ChromaStore implements VectorStore on top of the Chroma v2 HTTP API.
type ChromaStore struct {
	client chromago.Client

	mu          sync.Mutex
	collections map[string]chromago.Collection
}

var _ VectorStore = (*ChromaStore)(nil)

// NewChromaStore wraps an existing Chroma client.
func NewChromaStore(client chromago.Client) *ChromaStore {
	return &ChromaStore{
		client:      client,
		collections: make(map[string]chromago.Collection),
	}
}

func (s *ChromaStore) collection(ctx context.Context, name string) (chromago.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if coll, ok := s.collections[name]; ok {
		return coll, nil
	}
	coll, err := s.client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("created_by", "rag_server"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	s.collections[name] = coll
	return coll, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *ChromaStore) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.collection(ctx, name)
	return err
}

// HasCollection reports whether the named collection exists without creating it.
func (s *ChromaStore) HasCollection(ctx context.Context, name string) (bool, error) {
	names, err := s.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// AddRecords stores a batch of pre-embedded chunks in one call.
func (s *ChromaStore) AddRecords(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]chromago.DocumentID, 0, len(records))
	texts := make([]string, 0, len(records))
	embs := make([]embeddings.Embedding, 0, len(records))
	metas := make([]chromago.DocumentMetadata, 0, len(records))
	for _, r := range records {
		ids = append(ids, chromago.DocumentID(r.ID))
		texts = append(texts, r.Text)
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(r.Embedding))
		metas = append(metas, metadataFromMap(r.Metadata))
	}

	err = coll.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add records to %q: %w", collection, err)
	}
	return nil
}

// Query runs one nearest-neighbor lookup and converts Chroma's cosine
// distances into similarity scores.
func (s *ChromaStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]ScoredRecord, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	// The server's default include already carries documents, metadatas,
	// and distances; the v2 client has no distances Include constant.
	results, err := coll.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", collection, err)
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	metaGroups := results.GetMetadatasGroups()
	distGroups := results.GetDistancesGroups()
	if len(docGroups) == 0 {
		return nil, nil
	}

	scored := make([]ScoredRecord, 0, len(docGroups[0]))
	for i, doc := range docGroups[0] {
		var meta map[string]interface{}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			meta = metadataToMap(metaGroups[0][i])
		}
		var id string
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			id = string(idGroups[0][i])
		}
		score := 0.0
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			score = similarityFromDistance(float64(distGroups[0][i]))
		}
		scored = append(scored, ScoredRecord{
			Record: Record{ID: id, Text: doc.ContentString(), Metadata: meta},
			Score:  score,
		})
	}

	// Chroma returns ascending distance; keep descending score with a stable
	// sort so equal scores preserve insertion order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored, nil
}

// GetAll returns every record in a collection.
func (s *ChromaStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	results, err := coll.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from %q: %w", collection, err)
	}

	ids := results.GetIDs()
	docs := results.GetDocuments()
	metas := results.GetMetadatas()

	records := make([]Record, 0, len(ids))
	for i := range ids {
		r := Record{ID: string(ids[i])}
		if i < len(docs) {
			r.Text = docs[i].ContentString()
		}
		if i < len(metas) {
			r.Metadata = metadataToMap(metas[i])
		}
		records = append(records, r)
	}
	return records, nil
}

// Count returns the number of chunks in a collection.
func (s *ChromaStore) Count(ctx context.Context, collection string) (int, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	count, err := coll.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in %q: %w", collection, err)
	}
	return int(count), nil
}

// ListCollections returns every collection name known to the store.
func (s *ChromaStore) ListCollections(ctx context.Context) ([]string, error) {
	colls, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	names := make([]string, 0, len(colls))
	for _, c := range colls {
		names = append(names, c.Name())
	}
	return names, nil
}

// DeleteCollection removes a collection and drops its cached handle.
func (s *ChromaStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", name, err)
	}
	s.mu.Lock()
	delete(s.collections, name)
	s.mu.Unlock()
	return nil
}

// DeleteWhere removes all records whose metadata field equals value.
func (s *ChromaStore) DeleteWhere(ctx context.Context, collection, field, value string) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	where := chromago.EqString(field, value)
	return coll.Delete(ctx, chromago.WithWhereDelete(where))
}

// similarityFromDistance maps a cosine distance to a similarity in [0,1].
func similarityFromDistance(dist float64) float64 {
	score := 1 - dist
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// metadataFromMap builds a Chroma metadata value from a plain map. Chroma only
// accepts scalar attribute values, so anything else is stringified.
func metadataFromMap(meta map[string]interface{}) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, val))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(val)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, val))
		case float64:
			attrs = append(attrs, chromago.NewStringAttribute(k, strconv.FormatFloat(val, 'f', -1, 64)))
		case bool:
			attrs = append(attrs, chromago.NewStringAttribute(k, strconv.FormatBool(val)))
		case nil:
			attrs = append(attrs, chromago.NewStringAttribute(k, ""))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(k, fmt.Sprintf("%v", val)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// metadataToMap converts Chroma metadata back to a plain map. DocumentMetadata
// has no public accessor for all values, so it round-trips through JSON.
func metadataToMap(meta chromago.DocumentMetadata) map[string]interface{} {
	if meta == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
