package domain

import (
	"encoding/json"
	"fmt"
)

// ElementKind identifies the variant of an extracted document element.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindTable ElementKind = "table"
	KindImage ElementKind = "image"
)

// Element is one OCR-extracted fragment of a document. The set of
// implementations is closed: TextElement, TableElement and ImageElement.
// Elements are immutable value objects ordered by Index.
type Element interface {
	Kind() ElementKind
	// Index is the 0-based position in original reading order. Values are
	// unique per document but not necessarily contiguous.
	Index() int

	isElement()
}

// TextElement is a paragraph, heading or list item.
type TextElement struct {
	ElementIndex int    `json:"index"`
	Content      string `json:"content"`
	Level        int    `json:"level,omitempty"` // 1-6 for headings, 0 for body text
	IsListItem   bool   `json:"is_list_item,omitempty"`
}

// NewTextElement validates and constructs a TextElement.
func NewTextElement(index int, content string, level int, isListItem bool) (TextElement, error) {
	if content == "" {
		return TextElement{}, &ValidationError{Index: index, Field: "content", Reason: "must not be empty"}
	}
	if level < 0 || level > 6 {
		return TextElement{}, &ValidationError{Index: index, Field: "level", Reason: fmt.Sprintf("heading level %d out of range 1-6", level)}
	}
	return TextElement{ElementIndex: index, Content: content, Level: level, IsListItem: isListItem}, nil
}

func (e TextElement) Kind() ElementKind { return KindText }
func (e TextElement) Index() int        { return e.ElementIndex }
func (TextElement) isElement()          {}

// IsHeading reports whether the element carries a heading level.
func (e TextElement) IsHeading() bool { return e.Level >= 1 && e.Level <= 6 }

// TableElement is a rectangular table with a header row.
type TableElement struct {
	ElementIndex int        `json:"index"`
	Headers      []string   `json:"headers"`
	Rows         [][]string `json:"rows"`
}

// NewTableElement validates and constructs a TableElement. Every row must
// have exactly as many cells as there are headers; a mismatch is a
// structural defect, never silently padded or truncated.
func NewTableElement(index int, headers []string, rows [][]string) (TableElement, error) {
	if len(headers) == 0 {
		return TableElement{}, &ValidationError{Index: index, Field: "headers", Reason: "must not be empty"}
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return TableElement{}, &TableStructureError{Index: index, Row: i, Got: len(row), Want: len(headers)}
		}
	}
	return TableElement{ElementIndex: index, Headers: headers, Rows: rows}, nil
}

func (e TableElement) Kind() ElementKind { return KindTable }
func (e TableElement) Index() int        { return e.ElementIndex }
func (TableElement) isElement()          {}

// ImageElement references image bytes held by the OCR service; the bytes
// themselves are fetched out-of-band using ImageID.
type ImageElement struct {
	ElementIndex int    `json:"index"`
	ImageID      string `json:"image_id"`
	Caption      string `json:"caption,omitempty"`
}

// NewImageElement validates and constructs an ImageElement.
func NewImageElement(index int, imageID, caption string) (ImageElement, error) {
	if imageID == "" {
		return ImageElement{}, &ValidationError{Index: index, Field: "image_id", Reason: "must not be empty"}
	}
	return ImageElement{ElementIndex: index, ImageID: imageID, Caption: caption}, nil
}

func (e ImageElement) Kind() ElementKind { return KindImage }
func (e ImageElement) Index() int        { return e.ElementIndex }
func (ImageElement) isElement()          {}

// elementEnvelope tags the concrete variant so element collections survive a
// JSON round trip through the document cache.
type elementEnvelope struct {
	Type ElementKind `json:"type"`
}

// MarshalJSON adds the variant tag.
func (e TextElement) MarshalJSON() ([]byte, error) {
	type alias TextElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindText, alias(e)})
}

// MarshalJSON adds the variant tag.
func (e TableElement) MarshalJSON() ([]byte, error) {
	type alias TableElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindTable, alias(e)})
}

// MarshalJSON adds the variant tag.
func (e ImageElement) MarshalJSON() ([]byte, error) {
	type alias ImageElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindImage, alias(e)})
}

// UnmarshalElement decodes a tagged element produced by MarshalJSON back
// into its concrete variant.
func UnmarshalElement(data []byte) (Element, error) {
	var env elementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding element envelope: %w", err)
	}
	switch env.Type {
	case KindText:
		var e TextElement
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding text element: %w", err)
		}
		return e, nil
	case KindTable:
		var e TableElement
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding table element: %w", err)
		}
		return e, nil
	case KindImage:
		var e ImageElement
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding image element: %w", err)
		}
		return e, nil
	default:
		var pos struct {
			Index int `json:"index"`
		}
		_ = json.Unmarshal(data, &pos)
		return nil, &UnknownKindError{Index: pos.Index, Kind: string(env.Type)}
	}
}
