package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/specsource"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

// CaptureSpecUseCase fetches the specification from its source and persists
// the JSON snapshot that report generation later reads back.
type CaptureSpecUseCase struct {
	source specsource.Source
	store  ports.FileStore
	paths  ArtifactPaths
	logger ports.Logger
}

// NewCaptureSpecUseCase creates a new use case.
func NewCaptureSpecUseCase(source specsource.Source, store ports.FileStore, paths ArtifactPaths, logger ports.Logger) *CaptureSpecUseCase {
	return &CaptureSpecUseCase{source: source, store: store, paths: paths, logger: logger}
}

// Execute fetches and snapshots the specification.
func (uc *CaptureSpecUseCase) Execute(ctx context.Context) (*apispec.Document, error) {
	doc, err := uc.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specification: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize specification: %w", err)
	}

	if err := uc.store.MkdirAll(ctx, filepath.Dir(uc.paths.SpecFile)); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := uc.store.WriteFile(ctx, uc.paths.SpecFile, data); err != nil {
		return nil, fmt.Errorf("failed to write specification snapshot: %w", err)
	}

	uc.logger.Info("specification snapshot written", "path", uc.paths.SpecFile, "templates", doc.Len())
	return doc, nil
}
