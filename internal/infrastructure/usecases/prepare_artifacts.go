package usecases

import (
	"context"
	"errors"
	"io/fs"

	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

// PrepareArtifactsUseCase deletes artifacts left over from a previous audit
// cycle so the next report reflects only the current run. Deletion is best
// effort: absence is expected on first runs and any other failure is logged
// and swallowed, never failing the caller.
type PrepareArtifactsUseCase struct {
	store  ports.FileStore
	paths  ArtifactPaths
	logger ports.Logger
}

// NewPrepareArtifactsUseCase creates a new use case.
func NewPrepareArtifactsUseCase(store ports.FileStore, paths ArtifactPaths, logger ports.Logger) *PrepareArtifactsUseCase {
	return &PrepareArtifactsUseCase{store: store, paths: paths, logger: logger}
}

// Execute removes the stale specification snapshot, traffic snapshots, and report.
func (uc *PrepareArtifactsUseCase) Execute(ctx context.Context) {
	uc.remove(ctx, uc.paths.SpecFile)
	uc.remove(ctx, uc.paths.ReportFile)

	snapshots, err := uc.store.Glob(ctx, uc.paths.TrafficGlob())
	if err != nil {
		uc.logger.Warn("failed to list stale traffic snapshots", "pattern", uc.paths.TrafficGlob(), "error", err)
		return
	}
	for _, snapshot := range snapshots {
		uc.remove(ctx, snapshot)
	}
}

func (uc *PrepareArtifactsUseCase) remove(ctx context.Context, path string) {
	err := uc.store.Remove(ctx, path)
	switch {
	case err == nil:
		uc.logger.Debug("removed stale artifact", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		// Nothing to clean.
	default:
		uc.logger.Warn("failed to remove stale artifact", "path", path, "error", err)
	}
}
