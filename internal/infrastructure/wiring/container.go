package wiring

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sophialabs/apiaudit/internal/domain/traffic"
	inboundhttp "github.com/sophialabs/apiaudit/internal/infrastructure/inbound/http"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/specsource"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
	"github.com/sophialabs/apiaudit/internal/infrastructure/services"
	"github.com/sophialabs/apiaudit/internal/infrastructure/usecases"
)

// Params holds the configuration needed to construct the audit engine.
type Params struct {
	ArtifactDir string
	Source      specsource.Source
	Exclude     string // Expr exclusion filter, "" = record everything
	Logger      ports.Logger
	Store       ports.FileStore // nil = local filesystem
	RunID       string          // "" = generated
}

// Container owns the construction of all audit engine components.
type Container struct {
	logger   ports.Logger
	store    ports.FileStore
	log      *traffic.Log
	recorder *inboundhttp.Recorder
	auditor  *usecases.Auditor
	reportUC *usecases.GenerateReportUseCase
	paths    usecases.ArtifactPaths
}

// New constructs all audit engine components.
func New(p Params) (*Container, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("no specification source configured")
	}

	store := p.Store
	if store == nil {
		store = filesystem.NewOSStore()
	}

	var filter *services.RecordFilter
	if p.Exclude != "" {
		var err error
		filter, err = services.CompileFilter(p.Exclude)
		if err != nil {
			return nil, err
		}
	}

	renderer, err := services.NewReportGenerator()
	if err != nil {
		return nil, err
	}

	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	// Every log line of this cycle carries the run identifier.
	logger := p.Logger.With("run", runID)

	paths := usecases.DefaultArtifactPaths(p.ArtifactDir)
	clk := clock.New()
	log := traffic.NewLog()

	prepareUC := usecases.NewPrepareArtifactsUseCase(store, paths, logger)
	captureUC := usecases.NewCaptureSpecUseCase(p.Source, store, paths, logger)
	writeUC := usecases.NewWriteTrafficUseCase(log, store, paths, logger)
	reportUC := usecases.NewGenerateReportUseCase(store, paths, renderer, filter, clk, logger)

	auditor := usecases.NewAuditor(prepareUC, captureUC, writeUC, reportUC, log, logger, runID)
	recorder := inboundhttp.NewRecorder(log, logger)

	return &Container{
		logger:   logger,
		store:    store,
		log:      log,
		recorder: recorder,
		auditor:  auditor,
		reportUC: reportUC,
		paths:    paths,
	}, nil
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger { return c.logger }

// Store returns the file store backing the artifact set.
func (c *Container) Store() ports.FileStore { return c.store }

// TrafficLog returns the log the recorder appends to.
func (c *Container) TrafficLog() *traffic.Log { return c.log }

// Recorder returns the traffic recorder.
func (c *Container) Recorder() *inboundhttp.Recorder { return c.recorder }

// Auditor returns the audit cycle orchestrator.
func (c *Container) Auditor() *usecases.Auditor { return c.auditor }

// GenerateReportUseCase returns the report use case for one-shot report runs.
func (c *Container) GenerateReportUseCase() *usecases.GenerateReportUseCase { return c.reportUC }

// ArtifactPaths returns the artifact layout.
func (c *Container) ArtifactPaths() usecases.ArtifactPaths { return c.paths }
