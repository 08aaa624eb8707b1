// Package workflow drives the submit-then-fetch analysis sequence and owns
// the state the rendering layer reads.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/internal/validator"
)

var (
	// ErrAlreadyAnalyzing is returned when Analyze is called while a
	// sequence is in flight. The state is left untouched.
	ErrAlreadyAnalyzing = errors.New("already analyzing")

	// ErrSuperseded is returned when a call completed after the selection
	// it belonged to was replaced. Its result was discarded.
	ErrSuperseded = errors.New("request superseded")

	// ErrNoReportID is returned by ViewReport for an empty id
	ErrNoReportID = errors.New("report id is required")
)

// AnalysisAPI is the part of the gateway the orchestrator needs
type AnalysisAPI interface {
	Analyze(ctx context.Context, artifact *models.Artifact, cfg models.MigrationConfig) (string, error)
	GetReport(ctx context.Context, reportID string) (*models.MigrationReport, error)
}

// Orchestrator is the only writer of workflow state
type Orchestrator struct {
	api       AnalysisAPI
	validator *validator.Validator

	// notifyMu orders state writes together with their fan-out, so
	// observers see transitions in the order they were applied
	notifyMu sync.Mutex

	mu       sync.Mutex
	state    State
	artifact *models.Artifact
	config   models.MigrationConfig

	// generation identifies the current selection; results carrying an
	// older generation are dropped on arrival
	generation uint64

	onSessionExpired func()
	observers        []func(State)
}

// New creates an Orchestrator in the Idle state
func New(api AnalysisAPI, v *validator.Validator, cfg models.MigrationConfig) *Orchestrator {
	return &Orchestrator{
		api:       api,
		validator: v,
		state:     Idle{},
		config:    cfg,
	}
}

// OnSessionExpired registers the handler run after a transition to
// SessionExpired
func (o *Orchestrator) OnSessionExpired(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onSessionExpired = fn
}

// Subscribe registers fn to receive every state transition, in order.
// fn may read State but must not start a transition.
func (o *Orchestrator) Subscribe(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Report returns the loaded report, if any
func (o *Orchestrator) Report() (*models.MigrationReport, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.state.(WithReport); ok {
		return s.Report, true
	}
	return nil, false
}

// Config returns the version pair used for the next submission
func (o *Orchestrator) Config() models.MigrationConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// SetConfig replaces the version pair used for the next submission
func (o *Orchestrator) SetConfig(cfg models.MigrationConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.config = cfg
}

// Select replaces the selected artifact. A nil artifact clears the
// selection. Any loaded report, error, or in-flight result is discarded.
// Artifacts that fail validation are never stored.
func (o *Orchestrator) Select(artifact *models.Artifact) error {
	var err error
	o.update(func() bool {
		o.generation++
		switch {
		case artifact == nil:
			o.artifact = nil
			o.state = Idle{}
		default:
			if err = o.validator.ValidateArtifact(artifact); err != nil {
				o.artifact = nil
				o.state = Failed{Message: err.Error(), Err: err}
			} else {
				o.artifact = artifact
				o.state = Ready{Artifact: artifact}
			}
		}
		return true
	})
	return err
}

// Clear drops the selected artifact
func (o *Orchestrator) Clear() {
	o.Select(nil)
}

// Reset returns to Idle, discarding everything. Used on logout and expiry.
func (o *Orchestrator) Reset() {
	o.update(func() bool {
		o.generation++
		o.artifact = nil
		o.state = Idle{}
		return true
	})
}

// Analyze submits the selected artifact and then retrieves its report.
// Fetching never starts before the submit call has returned a report id.
func (o *Orchestrator) Analyze(ctx context.Context) (*models.MigrationReport, error) {
	var (
		artifact *models.Artifact
		cfg      models.MigrationConfig
		gen      uint64
		err      error
	)
	o.update(func() bool {
		if InFlight(o.state) {
			err = ErrAlreadyAnalyzing
			return false
		}

		artifact, cfg = o.artifact, o.config
		if err = o.validator.Validate(artifact, cfg); err != nil {
			o.state = Failed{Message: err.Error(), Err: err}
			return true
		}

		o.generation++
		gen = o.generation
		o.state = Submitting{Artifact: artifact}
		return true
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("submitting artifact", "name", artifact.Name, "size", artifact.Size, "versions", cfg.String())

	reportID, err := o.api.Analyze(ctx, artifact, cfg)
	if err != nil {
		return nil, o.fail(gen, err)
	}

	if !o.transition(gen, Fetching{ReportID: reportID}) {
		slog.Debug("discarding stale analysis result", "report_id", reportID)
		return nil, ErrSuperseded
	}

	return o.fetch(ctx, gen, reportID)
}

// ViewReport loads a stored report, bypassing submission. It supersedes
// any in-flight sequence.
func (o *Orchestrator) ViewReport(ctx context.Context, reportID string) (*models.MigrationReport, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, ErrNoReportID
	}

	var gen uint64
	o.update(func() bool {
		o.generation++
		gen = o.generation
		o.state = Fetching{ReportID: reportID}
		return true
	})

	return o.fetch(ctx, gen, reportID)
}

func (o *Orchestrator) fetch(ctx context.Context, gen uint64, reportID string) (*models.MigrationReport, error) {
	report, err := o.api.GetReport(ctx, reportID)
	if err != nil {
		return nil, o.fail(gen, err)
	}
	if report.ID == "" {
		report.ID = reportID
	}

	if !o.transition(gen, WithReport{Report: report}) {
		slog.Debug("discarding stale report", "report_id", reportID)
		return nil, ErrSuperseded
	}

	slog.Debug("report loaded", "report_id", report.ID, "issues", len(report.Issues))
	return report, nil
}

// transition moves to next if gen is still current
func (o *Orchestrator) transition(gen uint64, next State) bool {
	return o.update(func() bool {
		if o.generation != gen {
			return false
		}
		o.state = next
		return true
	})
}

// fail records err for generation gen and returns the error the caller
// should see
func (o *Orchestrator) fail(gen uint64, err error) error {
	var next State = Failed{Message: err.Error(), Err: err}
	expired := errors.Is(err, gateway.ErrSessionExpired)
	if expired {
		next = SessionExpired{}
	}

	applied := o.transition(gen, next)

	// Session expiry is global even when the request was stale
	if expired {
		o.runExpiryHook()
		return err
	}
	if !applied {
		return ErrSuperseded
	}
	return err
}

func (o *Orchestrator) runExpiryHook() {
	o.mu.Lock()
	hook := o.onSessionExpired
	o.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// update applies mutate under the state lock and, when it reports a
// transition, delivers the new state to observers before any later write.
func (o *Orchestrator) update(mutate func() bool) bool {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	if !mutate() {
		o.mu.Unlock()
		return false
	}
	next := o.state
	observers := append(([]func(State))(nil), o.observers...)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	return true
}
