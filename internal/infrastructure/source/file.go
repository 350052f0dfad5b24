package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileSource reads the export from the local filesystem.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	return f, nil
}

func (s *FileSource) Describe() string {
	return "file://" + s.path
}
