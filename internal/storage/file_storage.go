package storage

import (
	"context"
	"fmt"
	"os"
)

// FileFetcher reads catalog documents from the local file system.
type FileFetcher struct{}

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return readDocument(f)
}
