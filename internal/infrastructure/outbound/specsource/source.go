package specsource

import (
	"context"
	"fmt"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

// Source supplies the specification document for an audit cycle. The engine
// never generates or validates the specification; it only consumes it.
type Source interface {
	Fetch(ctx context.Context) (*apispec.Document, error)
}

var _ Source = (*FileSource)(nil)

// FileSource reads a specification document (YAML or JSON) through the file
// access port.
type FileSource struct {
	path  string
	store ports.FileStore
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string, store ports.FileStore) *FileSource {
	return &FileSource{path: path, store: store}
}

func (s *FileSource) Fetch(ctx context.Context) (*apispec.Document, error) {
	data, err := s.store.ReadFile(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification %s: %w", s.path, err)
	}
	doc, err := apispec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse specification %s: %w", s.path, err)
	}
	return doc, nil
}

var _ Source = (*StaticSource)(nil)

// StaticSource serves a pre-built document. Used when the caller already
// holds the specification in memory.
type StaticSource struct {
	Doc *apispec.Document
}

func (s *StaticSource) Fetch(context.Context) (*apispec.Document, error) {
	if s.Doc == nil {
		return nil, fmt.Errorf("no specification document configured")
	}
	return s.Doc, nil
}
