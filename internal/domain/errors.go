package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDocument       = errors.New("document has no elements")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNotAFile            = errors.New("not a regular file")
	ErrNoMarkdown          = errors.New("document has no rendered markdown")
)

// ValidationError reports a kind-specific field defect detected at element
// construction. Validation failures are deterministic and never retried.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("element %d: invalid %s: %s", e.Index, e.Field, e.Reason)
}

// DuplicateIndexError reports two elements sharing the same reading-order
// index within one document.
type DuplicateIndexError struct {
	Index int
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("duplicate element index %d", e.Index)
}

// TableStructureError reports a table row whose width does not match the
// header row.
type TableStructureError struct {
	Index int // element index of the table
	Row   int // offending data row, 0-based
	Got   int
	Want  int
}

func (e *TableStructureError) Error() string {
	return fmt.Sprintf("element %d: table row %d has %d cells, want %d", e.Index, e.Row, e.Got, e.Want)
}

// UnknownKindError reports an element variant the pipeline does not know.
type UnknownKindError struct {
	Index int
	Kind  string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("element %d: unknown element kind %q", e.Index, e.Kind)
}

// RenderError reports a defect surfaced during markdown rendering. These
// are implementation defects: logged with context and surfaced as a failed
// file, never silently dropped.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering failed: %s", e.Reason)
}

// IsValidation reports whether err belongs to the deterministic validation
// taxonomy. Such failures will not succeed on resubmission without new
// input, so callers must not retry them.
func IsValidation(err error) bool {
	var (
		ve *ValidationError
		de *DuplicateIndexError
		te *TableStructureError
		ke *UnknownKindError
	)
	return errors.Is(err, ErrEmptyDocument) ||
		errors.As(err, &ve) ||
		errors.As(err, &de) ||
		errors.As(err, &te) ||
		errors.As(err, &ke)
}
