package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakedoc/internal/domain"
)

func testDoc(checksum, markdown string) *domain.Document {
	return &domain.Document{
		Checksum: checksum,
		Elements: []domain.Element{
			domain.TextElement{ElementIndex: 0, Content: "Title", Level: 1},
			domain.ImageElement{ElementIndex: 1, ImageID: "img-1"},
		},
		Markdown:    markdown,
		ProcessedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadAll_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "documents.json"))
	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "documents.json")
	ctx := context.Background()

	s := New(path)
	require.NoError(t, s.Save(ctx, testDoc("bbb", "# Title\n")))
	require.NoError(t, s.Save(ctx, testDoc("aaa", "other\n")))

	// A fresh store sees both documents, concrete element types intact.
	reloaded := New(path)
	docs, err := reloaded.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "aaa", docs[0].Checksum)
	assert.Equal(t, "bbb", docs[1].Checksum)
	require.Len(t, docs[1].Elements, 2)
	assert.IsType(t, domain.TextElement{}, docs[1].Elements[0])
	assert.IsType(t, domain.ImageElement{}, docs[1].Elements[1])
	assert.Equal(t, "# Title\n", docs[1].Markdown)
}

func TestSave_Upserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.json")
	ctx := context.Background()

	s := New(path)
	require.NoError(t, s.Save(ctx, testDoc("sum", "old\n")))
	require.NoError(t, s.Save(ctx, testDoc("sum", "new\n")))

	docs, err := New(path).LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new\n", docs[0].Markdown)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "documents.json"))
	require.NoError(t, s.Save(context.Background(), testDoc("sum", "x\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "documents.json", entries[0].Name())
}

func TestLoadAll_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path).LoadAll(context.Background())
	assert.Error(t, err)
}
