// Package postgres persists the document cache in PostgreSQL, for setups
// where several machines share one cache.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"intakedoc/internal/domain"
	"intakedoc/internal/port"
)

const createTable = `CREATE TABLE IF NOT EXISTS document_cache (
	checksum     TEXT PRIMARY KEY,
	elements     JSONB NOT NULL,
	markdown     TEXT NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL
)`

type store struct {
	db *sqlx.DB
}

// cacheRow mirrors one document_cache row.
type cacheRow struct {
	Checksum    string    `db:"checksum"`
	Elements    []byte    `db:"elements"`
	Markdown    string    `db:"markdown"`
	ProcessedAt time.Time `db:"processed_at"`
}

// NewStore creates a PostgreSQL-backed DocumentStore, creating the cache
// table if needed.
func NewStore(db *sqlx.DB) (port.DocumentStore, error) {
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("creating document_cache table: %w", err)
	}
	return &store{db: db}, nil
}

func (s *store) LoadAll(ctx context.Context) ([]domain.Document, error) {
	var rows []cacheRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT checksum, elements, markdown, processed_at FROM document_cache ORDER BY checksum")
	if err != nil {
		return nil, fmt.Errorf("store.LoadAll: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		var raw []json.RawMessage
		if err := json.Unmarshal(row.Elements, &raw); err != nil {
			return nil, fmt.Errorf("store.LoadAll: decoding elements for %s: %w", row.Checksum, err)
		}
		elements := make([]domain.Element, 0, len(raw))
		for _, msg := range raw {
			el, err := domain.UnmarshalElement(msg)
			if err != nil {
				return nil, fmt.Errorf("store.LoadAll: decoding element for %s: %w", row.Checksum, err)
			}
			elements = append(elements, el)
		}
		docs = append(docs, domain.Document{
			Checksum:    row.Checksum,
			Elements:    elements,
			Markdown:    row.Markdown,
			ProcessedAt: row.ProcessedAt,
		})
	}
	return docs, nil
}

func (s *store) Save(ctx context.Context, doc *domain.Document) error {
	elements, err := json.Marshal(doc.Elements)
	if err != nil {
		return fmt.Errorf("store.Save: encoding elements: %w", err)
	}

	query := `INSERT INTO document_cache (checksum, elements, markdown, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checksum) DO UPDATE SET
			elements = EXCLUDED.elements,
			markdown = EXCLUDED.markdown,
			processed_at = EXCLUDED.processed_at`

	if _, err := s.db.ExecContext(ctx, query, doc.Checksum, elements, doc.Markdown, doc.ProcessedAt); err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	return nil
}

func (s *store) Close() error {
	return s.db.Close()
}
