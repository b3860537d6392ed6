// Package registry maps content checksums to processed documents and
// decides whether a file instance needs (re-)processing. It is the only
// shared mutable state between concurrent pipelines.
package registry

import (
	"context"
	"fmt"
	"sync"

	"intakedoc/internal/domain"
	"intakedoc/internal/port"
)

// flight tracks one in-progress render for a checksum so concurrent runs
// for identical content collapse into a single producer.
type flight struct {
	done chan struct{}
	doc  *domain.Document
	err  error
}

// Registry is a checksum-keyed document cache backed by a DocumentStore.
type Registry struct {
	store port.DocumentStore

	mu       sync.Mutex
	docs     map[string]*domain.Document
	inflight map[string]*flight
}

// New creates a Registry over the given persistence backend.
func New(store port.DocumentStore) *Registry {
	return &Registry{
		store:    store,
		docs:     make(map[string]*domain.Document),
		inflight: make(map[string]*flight),
	}
}

// Load populates the registry from the backend. Called once at startup so
// a killed batch resumes without re-processing completed checksums.
func (r *Registry) Load(ctx context.Context) error {
	docs, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading document cache: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range docs {
		doc := docs[i]
		r.docs[doc.Checksum] = &doc
	}
	return nil
}

// Lookup returns the cached document for a checksum, if any.
func (r *Registry) Lookup(checksum string) (*domain.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[checksum]
	return doc, ok
}

// Store caches the document and flushes it to the backend, overwriting any
// prior entry for the same checksum.
func (r *Registry) Store(ctx context.Context, doc *domain.Document) error {
	if err := r.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving document %s: %w", shortSum(doc.Checksum), err)
	}
	r.mu.Lock()
	r.docs[doc.Checksum] = doc
	r.mu.Unlock()
	return nil
}

// NeedsProcessing reports whether the instance's content still has to be
// rendered. Only the checksum matters: path, modification time and other
// instances' history are irrelevant because identical bytes always produce
// identical output.
func (r *Registry) NeedsProcessing(inst *domain.DocumentInstance) bool {
	_, ok := r.Lookup(inst.Checksum)
	return !ok
}

// Materialize returns the document for a checksum, producing it at most
// once: a cached entry is returned immediately, a concurrent producer for
// the same checksum is awaited and its result reused, and otherwise produce
// runs and the result is stored. cached reports whether this call reused an
// existing or concurrent result instead of producing its own.
func (r *Registry) Materialize(ctx context.Context, checksum string, produce func(context.Context) (*domain.Document, error)) (doc *domain.Document, cached bool, err error) {
	r.mu.Lock()
	if doc, ok := r.docs[checksum]; ok {
		r.mu.Unlock()
		return doc, true, nil
	}
	if f, ok := r.inflight[checksum]; ok {
		r.mu.Unlock()
		select {
		case <-f.done:
			return f.doc, true, f.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	r.inflight[checksum] = f
	r.mu.Unlock()

	doc, err = produce(ctx)
	if err == nil {
		err = r.Store(ctx, doc)
	}

	f.doc, f.err = doc, err
	r.mu.Lock()
	delete(r.inflight, checksum)
	r.mu.Unlock()
	close(f.done)

	if err != nil {
		return nil, false, err
	}
	return doc, false, nil
}

func shortSum(sum string) string {
	if len(sum) > 16 {
		return sum[:16]
	}
	return sum
}
