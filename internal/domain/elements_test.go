package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextElement(t *testing.T) {
	e, err := NewTextElement(3, "Quarterly Report", 2, false)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Index())
	assert.Equal(t, KindText, e.Kind())
	assert.True(t, e.IsHeading())

	body, err := NewTextElement(4, "plain paragraph", 0, false)
	require.NoError(t, err)
	assert.False(t, body.IsHeading())
}

func TestNewTextElement_Invalid(t *testing.T) {
	_, err := NewTextElement(0, "", 0, false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)

	_, err = NewTextElement(1, "too deep", 7, false)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "level", ve.Field)
}

func TestNewTableElement_RowWidthMismatch(t *testing.T) {
	_, err := NewTableElement(5, []string{"a", "b"}, [][]string{
		{"1", "2"},
		{"only one"},
	})
	var tse *TableStructureError
	require.ErrorAs(t, err, &tse)
	assert.Equal(t, 5, tse.Index)
	assert.Equal(t, 1, tse.Row)
	assert.Equal(t, 1, tse.Got)
	assert.Equal(t, 2, tse.Want)
}

func TestNewTableElement_EmptyHeaders(t *testing.T) {
	_, err := NewTableElement(2, nil, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "headers", ve.Field)
}

func TestNewImageElement_RequiresID(t *testing.T) {
	_, err := NewImageElement(7, "", "a chart")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	img, err := NewImageElement(7, "img-001", "")
	require.NoError(t, err)
	assert.Equal(t, KindImage, img.Kind())
}

func TestElementJSONRoundTrip(t *testing.T) {
	elements := []Element{
		TextElement{ElementIndex: 0, Content: "Title", Level: 1},
		TextElement{ElementIndex: 1, Content: "item", IsListItem: true},
		TableElement{ElementIndex: 2, Headers: []string{"h"}, Rows: [][]string{{"v"}}},
		ImageElement{ElementIndex: 3, ImageID: "img-9", Caption: "figure"},
	}

	for _, el := range elements {
		data, err := json.Marshal(el)
		require.NoError(t, err)

		decoded, err := UnmarshalElement(data)
		require.NoError(t, err)
		assert.Equal(t, el, decoded)
	}
}

func TestUnmarshalElement_UnknownKind(t *testing.T) {
	_, err := UnmarshalElement([]byte(`{"type":"chart","index":12}`))
	var uke *UnknownKindError
	require.ErrorAs(t, err, &uke)
	assert.Equal(t, 12, uke.Index)
	assert.Equal(t, "chart", uke.Kind)
}
