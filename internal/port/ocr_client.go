package port

import (
	"context"

	"intakedoc/internal/domain"
)

// ExtractInput carries one file to the remote OCR service.
type ExtractInput struct {
	Path     string
	FileType domain.DocumentType
	Bytes    []byte
}

// OCRClient abstracts the remote OCR service: upload a file, wait for the
// result, and return the ordered element collection. Implementations
// surface failures as the typed errors in internal/ocr; callers never see
// the transport underneath.
type OCRClient interface {
	Extract(ctx context.Context, input ExtractInput) ([]domain.Element, error)
}
