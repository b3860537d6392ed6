package port

import "context"

// OutputWriter persists one rendered markdown document under a suggested
// relative name. Implementations must be atomic: a failed write leaves no
// partial output behind. The returned location is backend-specific (a local
// path or an object URL).
type OutputWriter interface {
	Write(ctx context.Context, name string, markdown string) (string, error)
}
