// Package filestore persists the document cache as a single JSON file,
// rewritten atomically after each successful render.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"intakedoc/internal/domain"
	"intakedoc/internal/port"
)

type cacheFile struct {
	Documents []domain.Document `json:"documents"`
}

// Store is a file-backed port.DocumentStore.
type Store struct {
	path string

	mu   sync.Mutex
	docs map[string]domain.Document
}

// New creates a Store at the given path. The file is created lazily on the
// first Save.
func New(path string) *Store {
	return &Store{path: path, docs: make(map[string]domain.Document)}
}

// LoadAll reads the cache file. A missing file is an empty cache, not an
// error.
func (s *Store) LoadAll(ctx context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache file %s: %w", s.path, err)
	}

	var cache cacheFile
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("decoding cache file %s: %w", s.path, err)
	}
	for _, doc := range cache.Documents {
		s.docs[doc.Checksum] = doc
	}
	return cache.Documents, nil
}

// Save upserts the document and rewrites the cache file via a temp file and
// rename, so a crash mid-write never corrupts the cache.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.Checksum] = *doc
	return s.flush()
}

func (s *Store) flush() error {
	cache := cacheFile{Documents: make([]domain.Document, 0, len(s.docs))}
	for _, doc := range s.docs {
		cache.Documents = append(cache.Documents, doc)
	}
	sortByChecksum(cache.Documents)

	data, err := json.MarshalIndent(&cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache file %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; every Save already flushes to disk.
func (s *Store) Close() error { return nil }

// sortByChecksum keeps the file diff-stable across rewrites.
func sortByChecksum(docs []domain.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Checksum < docs[j].Checksum })
}

var _ port.DocumentStore = (*Store)(nil)
