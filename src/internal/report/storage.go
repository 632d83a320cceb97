package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage persists a rendered report artifact.
type Storage interface {
	Save(content, filename string) (string, error)
}

// FileStorage writes report artifacts into an output directory.
type FileStorage struct {
	OutputDir string
}

// NewFileStorage creates a file storage rooted at outputDir.
func NewFileStorage(outputDir string) *FileStorage {
	return &FileStorage{
		OutputDir: outputDir,
	}
}

// Save writes one artifact and returns its path.
func (s *FileStorage) Save(content, filename string) (string, error) {
	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.OutputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
