// Package writer provides the output backends that persist rendered
// markdown.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"intakedoc/internal/port"
)

type localWriter struct {
	dir string
}

// NewLocal creates an OutputWriter that writes markdown files into dir,
// creating it if needed. Writes go through a temp file and rename so a
// cancelled or failed pipeline never leaves a partial file behind.
func NewLocal(dir string) (port.OutputWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &localWriter{dir: dir}, nil
}

func (w *localWriter) Write(ctx context.Context, name string, markdown string) (string, error) {
	target := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, ".out-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp output file: %w", err)
	}
	if _, err := tmp.WriteString(markdown); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("replacing %s: %w", target, err)
	}
	return target, nil
}
