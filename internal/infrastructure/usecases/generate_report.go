package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/domain/coverage"
	"github.com/sophialabs/apiaudit/internal/domain/traffic"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
	"github.com/sophialabs/apiaudit/internal/infrastructure/services"
)

// ErrSpecUnavailable marks a report-generation failure caused by a missing or
// malformed specification snapshot. There is nothing meaningful to compare
// against, so this error propagates to the caller instead of producing a
// misleading empty report.
var ErrSpecUnavailable = errors.New("specification unavailable")

// GenerateReportUseCase loads the specification snapshot and every traffic
// snapshot present, computes coverage, and writes the report.
type GenerateReportUseCase struct {
	store    ports.FileStore
	paths    ArtifactPaths
	renderer *services.ReportGenerator
	filter   *services.RecordFilter
	clock    ports.Clock
	logger   ports.Logger
}

// NewGenerateReportUseCase creates a new use case. filter may be nil.
func NewGenerateReportUseCase(
	store ports.FileStore,
	paths ArtifactPaths,
	renderer *services.ReportGenerator,
	filter *services.RecordFilter,
	clock ports.Clock,
	logger ports.Logger,
) *GenerateReportUseCase {
	return &GenerateReportUseCase{
		store:    store,
		paths:    paths,
		renderer: renderer,
		filter:   filter,
		clock:    clock,
		logger:   logger,
	}
}

// Execute generates and writes the report for the given run.
func (uc *GenerateReportUseCase) Execute(ctx context.Context, runID string) error {
	data, err := uc.store.ReadFile(ctx, uc.paths.SpecFile)
	if err != nil {
		return fmt.Errorf("%w: failed to read snapshot %s: %v", ErrSpecUnavailable, uc.paths.SpecFile, err)
	}
	doc, err := apispec.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpecUnavailable, err)
	}

	records, err := uc.loadTraffic(ctx)
	if err != nil {
		return err
	}
	records = uc.filter.Apply(records)

	result := coverage.Compute(doc, records)

	report, err := uc.renderer.Render(doc, result, uc.clock.Now(), runID)
	if err != nil {
		return err
	}
	if err := uc.store.WriteFile(ctx, uc.paths.ReportFile, []byte(report)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	uc.logger.Info("audit report written",
		"path", uc.paths.ReportFile,
		"records", result.TrafficCount,
		"tested_paths", result.PathsTested(),
		"declared_paths", result.PathsTotal,
		"undocumented", len(result.Undocumented),
	)
	return nil
}

// loadTraffic merges every snapshot file present, not just the most recent
// one, so independent suite snapshots aggregate into one audit.
func (uc *GenerateReportUseCase) loadTraffic(ctx context.Context) ([]traffic.Record, error) {
	snapshots, err := uc.store.Glob(ctx, uc.paths.TrafficGlob())
	if err != nil {
		return nil, fmt.Errorf("failed to list traffic snapshots: %w", err)
	}

	var records []traffic.Record
	for _, snapshot := range snapshots {
		data, err := uc.store.ReadFile(ctx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to read traffic snapshot %s: %w", snapshot, err)
		}
		var batch []traffic.Record
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse traffic snapshot %s: %w", snapshot, err)
		}
		records = append(records, batch...)
	}
	return records, nil
}
