package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

var _ ports.FileStore = (*OSStore)(nil)

// OSStore implements ports.FileStore on the local filesystem. Writes are
// atomic: content lands in a temp file that is renamed into place, so a
// crashed write never leaves a half-written artifact behind.
type OSStore struct{}

// NewOSStore creates a new OSStore.
func NewOSStore() *OSStore {
	return &OSStore{}
}

func (s *OSStore) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *OSStore) WriteFile(_ context.Context, path string, data []byte) error {
	return atomicWriteFile(path, data)
}

func (s *OSStore) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, 0o755)
}

func (s *OSStore) Glob(_ context.Context, pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *OSStore) Remove(_ context.Context, path string) error {
	return os.Remove(path)
}

// atomicWriteFile writes content to a temp file then renames it to the target path.
func atomicWriteFile(target string, content []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".apiaudit-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
