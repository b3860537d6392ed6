package domain

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DocumentInstance is one physical file discovered on disk. Two instances
// with identical bytes share a checksum and therefore a Document.
type DocumentInstance struct {
	Path        string       `json:"path"`
	FileType    DocumentType `json:"file_type"`
	Checksum    string       `json:"checksum"`
	Size        int64        `json:"size"`
	ModTime     time.Time    `json:"mod_time"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}

// OutputName is the suggested relative name for the rendered markdown,
// derived from the source file's stem.
func (i *DocumentInstance) OutputName() string {
	base := filepath.Base(i.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".md"
}

// Document is processed content keyed by checksum, independent of any file
// path. Markdown is a pure function of Elements, so re-rendering the same
// collection yields byte-identical output.
type Document struct {
	Checksum    string    `json:"checksum"`
	Elements    []Element `json:"elements"`
	Markdown    string    `json:"markdown"`
	ProcessedAt time.Time `json:"processed_at"`
}

// UnmarshalJSON decodes the tagged element collection back into concrete
// variants.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Checksum    string            `json:"checksum"`
		Elements    []json.RawMessage `json:"elements"`
		Markdown    string            `json:"markdown"`
		ProcessedAt time.Time         `json:"processed_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	elements := make([]Element, 0, len(raw.Elements))
	for _, msg := range raw.Elements {
		el, err := UnmarshalElement(msg)
		if err != nil {
			return fmt.Errorf("decoding document %s: %w", shortChecksum(raw.Checksum), err)
		}
		elements = append(elements, el)
	}
	d.Checksum = raw.Checksum
	d.Elements = elements
	d.Markdown = raw.Markdown
	d.ProcessedAt = raw.ProcessedAt
	return nil
}

func shortChecksum(sum string) string {
	if len(sum) > 16 {
		return sum[:16]
	}
	return sum
}
