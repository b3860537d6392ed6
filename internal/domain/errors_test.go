package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrEmptyDocument))
	assert.True(t, IsValidation(&ValidationError{Index: 1, Field: "content"}))
	assert.True(t, IsValidation(&DuplicateIndexError{Index: 2}))
	assert.True(t, IsValidation(&TableStructureError{Index: 3}))
	assert.True(t, IsValidation(&UnknownKindError{Index: 4, Kind: "chart"}))

	assert.True(t, IsValidation(fmt.Errorf("assembling: %w", &DuplicateIndexError{Index: 2})))

	assert.False(t, IsValidation(errors.New("connection refused")))
	assert.False(t, IsValidation(ErrNoMarkdown))
	assert.False(t, IsValidation(&RenderError{Reason: "empty logical tree"}))
}

func TestErrorMessagesNameTheIndex(t *testing.T) {
	assert.Contains(t, (&ValidationError{Index: 7, Field: "content", Reason: "must not be empty"}).Error(), "element 7")
	assert.Contains(t, (&DuplicateIndexError{Index: 7}).Error(), "7")
	assert.Contains(t, (&TableStructureError{Index: 7, Row: 2, Got: 1, Want: 3}).Error(), "row 2")
	assert.Contains(t, (&UnknownKindError{Index: 7, Kind: "chart"}).Error(), `"chart"`)
}
