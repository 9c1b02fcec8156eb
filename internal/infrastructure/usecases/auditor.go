package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sophialabs/apiaudit/internal/domain/traffic"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

// State is the audit cycle lifecycle position.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRecording
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// DefaultSuite is the snapshot name used by the single-shot teardown flow.
const DefaultSuite = "all"

// Auditor coordinates one audit cycle: Idle → Preparing → Recording →
// Finalizing → Done, with Failed reachable from any state. It owns the
// traffic log and assumes sequential invocation of the lifecycle steps; a
// cycle must finish before another begins against the same log. The state
// field is mutex-guarded because the proxy's status handler reads it from
// request goroutines while a control call advances it. File-system failures
// during cleanup and writing are logged and swallowed so the audit never
// aborts the host test run; only a missing or unparsable specification at
// report time propagates.
type Auditor struct {
	prepareUC *PrepareArtifactsUseCase
	captureUC *CaptureSpecUseCase
	writeUC   *WriteTrafficUseCase
	reportUC  *GenerateReportUseCase
	log       *traffic.Log
	logger    ports.Logger
	runID     string

	mu    sync.Mutex
	state State
}

// NewAuditor creates an auditor in the Idle state.
func NewAuditor(
	prepareUC *PrepareArtifactsUseCase,
	captureUC *CaptureSpecUseCase,
	writeUC *WriteTrafficUseCase,
	reportUC *GenerateReportUseCase,
	log *traffic.Log,
	logger ports.Logger,
	runID string,
) *Auditor {
	return &Auditor{
		prepareUC: prepareUC,
		captureUC: captureUC,
		writeUC:   writeUC,
		reportUC:  reportUC,
		log:       log,
		logger:    logger,
		runID:     runID,
		state:     StateIdle,
	}
}

// Log returns the traffic log the recorder should append to.
func (a *Auditor) Log() *traffic.Log { return a.log }

// State returns the current lifecycle state. Safe for concurrent use.
func (a *Auditor) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Auditor) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// RunID returns this cycle's identifier.
func (a *Auditor) RunID() string { return a.runID }

// Prepare clears artifacts from any previous cycle. Best effort: reruns are
// idempotent and cleanup failure never blocks the new cycle.
func (a *Auditor) Prepare(ctx context.Context) {
	a.setState(StatePreparing)
	a.prepareUC.Execute(ctx)
	a.logger.Debug("audit cycle prepared")
}

// Record captures the specification snapshot and enters the Recording state.
// The caller then attaches the recorder (via Log) to the service instances
// its test exchanges hit.
func (a *Auditor) Record(ctx context.Context) error {
	if _, err := a.captureUC.Execute(ctx); err != nil {
		a.setState(StateFailed)
		return fmt.Errorf("failed to enter recording state: %w", err)
	}
	a.setState(StateRecording)
	return nil
}

// WriteTraffic persists the current log as the named suite's snapshot and
// clears the log. File-system failures are logged, not returned; the records
// drained for a failed write are lost, which is an accepted gap. Returns the
// number of records persisted.
func (a *Auditor) WriteTraffic(ctx context.Context, suite string) int {
	count, err := a.writeUC.Execute(ctx, suite)
	if err != nil {
		a.logger.Error("failed to write traffic snapshot", "suite", suite, "error", err)
		return 0
	}
	return count
}

// Teardown is the single-shot finalization: snapshot whatever the log still
// holds, then aggregate every snapshot present into the report. A missing or
// malformed specification snapshot is returned as an error; any other failure
// is logged and swallowed.
func (a *Auditor) Teardown(ctx context.Context) error {
	a.setState(StateFinalizing)
	a.WriteTraffic(ctx, DefaultSuite)

	err := a.reportUC.Execute(ctx, a.runID)
	switch {
	case errors.Is(err, ErrSpecUnavailable):
		a.setState(StateFailed)
		return err
	case err != nil:
		a.setState(StateFailed)
		a.logger.Error("failed to generate audit report", "error", err)
		return nil
	}

	a.setState(StateDone)
	a.logger.Info("audit cycle complete")
	return nil
}
