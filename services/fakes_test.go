package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeStore is an in-memory VectorStore. Query results can be canned per
// collection; otherwise stored records come back in insertion order with
// descending synthetic scores.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]Record
	canned      map[string][]ScoredRecord

	addCalls  int
	failAdd   bool
	failQuery bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string][]Record),
		canned:      make(map[string][]ScoredRecord),
	}
}

func (f *fakeStore) EnsureCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[name]; !ok {
		f.collections[name] = []Record{}
	}
	return nil
}

func (f *fakeStore) HasCollection(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeStore) AddRecords(_ context.Context, collection string, records []Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.failAdd {
		return errors.New("add failed")
	}
	f.collections[collection] = append(f.collections[collection], records...)
	return nil
}

func (f *fakeStore) Query(_ context.Context, collection string, _ []float32, topK int) ([]ScoredRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failQuery {
		return nil, errors.New("query failed")
	}
	if canned, ok := f.canned[collection]; ok {
		if topK < len(canned) {
			canned = canned[:topK]
		}
		return canned, nil
	}
	records := f.collections[collection]
	if topK < len(records) {
		records = records[:topK]
	}
	scored := make([]ScoredRecord, 0, len(records))
	for i, r := range records {
		scored = append(scored, ScoredRecord{Record: r, Score: 1.0 - float64(i)*0.1})
	}
	return scored, nil
}

func (f *fakeStore) GetAll(_ context.Context, collection string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[collection], nil
}

func (f *fakeStore) Count(_ context.Context, collection string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[collection]), nil
}

func (f *fakeStore) ListCollections(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[name]; !ok {
		return fmt.Errorf("collection %q does not exist", name)
	}
	delete(f.collections, name)
	return nil
}

func (f *fakeStore) DeleteWhere(_ context.Context, collection, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.collections[collection][:0]
	for _, r := range f.collections[collection] {
		if v, ok := r.Metadata[field].(string); ok && v == value {
			continue
		}
		kept = append(kept, r)
	}
	f.collections[collection] = kept
	return nil
}

// fakeEmbedder returns a constant vector and can be made to fail after a
// number of successful calls.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failAfter int // fail on call n (1-based); 0 means never fail
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAfter > 0 && f.calls >= f.failAfter {
		return nil, errors.New("embedding service unavailable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeLLM records the last call and replies with a canned response.
type fakeLLM struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Complete(_ context.Context, system, prompt string, _ float32) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
