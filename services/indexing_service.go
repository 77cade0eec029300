package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileIndexingService keeps a local directory in sync with one collection:
// scanning on startup and watching for changes afterwards. Files are tracked
// by content hash so unchanged files are skipped.
type FileIndexingService struct {
	manager    *CollectionManager
	store      VectorStore
	collection string
}

// NewFileIndexingService builds an indexer targeting the given collection.
func NewFileIndexingService(manager *CollectionManager, store VectorStore, collection string) *FileIndexingService {
	return &FileIndexingService{
		manager:    manager,
		store:      store,
		collection: SanitizeCollectionName(collection),
	}
}

// indexState holds the stored hash of a file in the collection.
type indexState struct {
	Hash string
}

// WatchDirectory blocks, re-indexing files as they change, until the context
// is cancelled.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}

				// Editors often write via a temp file and rename, so Create
				// and Write are handled the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					if err := s.removeFileChunks(ctx, event.Name); err != nil {
						log.Printf("WATCHER WARN: Could not remove old chunks for %s: %v", event.Name, err)
					}
					if err := s.indexFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.removeFileChunks(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// ScanAndIndexDirectory syncs the directory with the collection: new and
// changed files are (re-)ingested, deleted files are removed.
func (s *FileIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	indexedFiles, err := s.currentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isSupportedFile(path) {
			return nil
		}
		localFiles[path] = true
		hash, err := calculateFileHash(path)
		if err != nil {
			log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
			return nil
		}

		if state, ok := indexedFiles[path]; ok {
			if state.Hash == hash {
				return nil
			}
			log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
			if err := s.removeFileChunks(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
				return nil
			}
		}

		log.Printf("INDEXER: Indexing new/modified file: %s", path)
		if err := s.indexFile(ctx, path, hash); err != nil {
			log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.removeFileChunks(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Directory scan finished.")
}

// indexFile extracts, chunks, and ingests one file with its content hash in
// the chunk metadata.
func (s *FileIndexingService) indexFile(ctx context.Context, path, hash string) error {
	pages, err := ExtractFile(path)
	if err != nil {
		return err
	}
	count, _, err := s.manager.IngestPages(ctx, s.collection, filepath.Base(path), pages, map[string]interface{}{
		"source_file": path,
		"file_hash":   hash,
	})
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Indexed %s as %d chunks.", path, count)
	return nil
}

// currentIndexState reads the (source_file, file_hash) pairs stored in chunk
// metadata.
func (s *FileIndexingService) currentIndexState(ctx context.Context) (map[string]indexState, error) {
	state := make(map[string]indexState)
	ok, err := s.store.HasCollection(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return state, nil
	}

	records, err := s.store.GetAll(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		path, ok := r.Metadata["source_file"].(string)
		if !ok {
			continue
		}
		hash, ok := r.Metadata["file_hash"].(string)
		if !ok {
			continue
		}
		if _, exists := state[path]; !exists {
			state[path] = indexState{Hash: hash}
		}
	}
	return state, nil
}

func (s *FileIndexingService) removeFileChunks(ctx context.Context, path string) error {
	ok, err := s.store.HasCollection(ctx, s.collection)
	if err != nil || !ok {
		return err
	}
	return s.store.DeleteWhere(ctx, s.collection, "source_file", path)
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
