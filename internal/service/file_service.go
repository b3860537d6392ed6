package service

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"intakedoc/internal/domain"
)

const largeFileBytes = 10 * 1024 * 1024

// FileService discovers source files and builds DocumentInstances.
type FileService struct{}

// NewFileService creates a FileService.
func NewFileService() *FileService {
	return &FileService{}
}

// Discover validates a single file and builds its DocumentInstance,
// including the SHA-512 content checksum that identifies the document.
func (s *FileService) Discover(path string) (*domain.DocumentInstance, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotAFile)
	}

	docType, ok := domain.DocumentTypeForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedFileType)
	}

	if info.Size() > largeFileBytes {
		log.Printf("fileService: large file %s (%.2f MB), processing may take longer",
			path, float64(info.Size())/1024/1024)
	}

	checksum, err := Checksum(path)
	if err != nil {
		return nil, err
	}

	return &domain.DocumentInstance{
		Path:     path,
		FileType: docType,
		Checksum: checksum,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}

// DiscoverDir builds instances for every supported file directly inside
// dir. Unsupported files are skipped and counted, not failed.
func (s *FileService) DiscoverDir(dir string) (instances []*domain.DocumentInstance, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, ok := domain.DocumentTypeForPath(path); !ok {
			log.Printf("fileService: skipping unsupported file %s", path)
			skipped++
			continue
		}
		inst, err := s.Discover(path)
		if err != nil {
			return nil, 0, err
		}
		instances = append(instances, inst)
	}
	return instances, skipped, nil
}

// Checksum computes the SHA-512 hex digest of a file's content.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha512.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksumming %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
