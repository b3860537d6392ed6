package port

import (
	"context"

	"intakedoc/internal/domain"
)

// DocumentStore persists the checksum-keyed document cache so a killed
// batch can resume without re-processing completed checksums. LoadAll runs
// once at startup; Save runs after each successful render and overwrites
// any prior entry for the same checksum.
type DocumentStore interface {
	LoadAll(ctx context.Context) ([]domain.Document, error)
	Save(ctx context.Context, doc *domain.Document) error
	Close() error
}
