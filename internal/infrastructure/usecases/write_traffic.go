package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sophialabs/apiaudit/internal/domain/traffic"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

// WriteTrafficUseCase persists the in-memory log as one snapshot file scoped
// to a suite name, then clears the log, so snapshots from successive suites
// never share records. An empty log skips the write entirely.
type WriteTrafficUseCase struct {
	log    *traffic.Log
	store  ports.FileStore
	paths  ArtifactPaths
	logger ports.Logger
}

// NewWriteTrafficUseCase creates a new use case.
func NewWriteTrafficUseCase(log *traffic.Log, store ports.FileStore, paths ArtifactPaths, logger ports.Logger) *WriteTrafficUseCase {
	return &WriteTrafficUseCase{log: log, store: store, paths: paths, logger: logger}
}

// Execute drains the log into the suite's snapshot file. It returns the
// number of records persisted.
func (uc *WriteTrafficUseCase) Execute(ctx context.Context, suite string) (int, error) {
	records := uc.log.Drain()
	if len(records) == 0 {
		uc.logger.Debug("no traffic to snapshot", "suite", suite)
		return 0, nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to serialize traffic records: %w", err)
	}

	if err := uc.store.MkdirAll(ctx, uc.paths.TrafficDir); err != nil {
		return 0, fmt.Errorf("failed to create traffic directory: %w", err)
	}

	target := uc.paths.TrafficFile(suite)
	if err := uc.store.WriteFile(ctx, target, data); err != nil {
		return 0, fmt.Errorf("failed to write traffic snapshot: %w", err)
	}

	uc.logger.Info("traffic snapshot written", "suite", suite, "path", target, "records", len(records))
	return len(records), nil
}
