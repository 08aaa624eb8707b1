package workflow

import (
	"github.com/akrishnanDG/migration-analyzer/internal/models"
)

// Phase names a workflow state
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseReady          Phase = "ready"
	PhaseSubmitting     Phase = "submitting"
	PhaseFetching       Phase = "fetching"
	PhaseReport         Phase = "report"
	PhaseFailed         Phase = "failed"
	PhaseSessionExpired Phase = "session_expired"
)

// State is the orchestrator's current state. Each variant carries only the
// data that is valid in it. The set of variants is closed.
type State interface {
	Phase() Phase
	isState()
}

// Idle means no artifact is selected
type Idle struct{}

// Ready means an artifact passed validation and has not been submitted
type Ready struct {
	Artifact *models.Artifact
}

// Submitting means the analyze call is in flight
type Submitting struct {
	Artifact *models.Artifact
}

// Fetching means the report retrieval for ReportID is in flight
type Fetching struct {
	ReportID string
}

// WithReport holds a loaded report
type WithReport struct {
	Report *models.MigrationReport
}

// Failed holds the message of the last local or request failure
type Failed struct {
	Message string
	Err     error
}

// SessionExpired means the service rejected the credential mid-workflow
type SessionExpired struct{}

func (Idle) Phase() Phase           { return PhaseIdle }
func (Ready) Phase() Phase          { return PhaseReady }
func (Submitting) Phase() Phase     { return PhaseSubmitting }
func (Fetching) Phase() Phase       { return PhaseFetching }
func (WithReport) Phase() Phase     { return PhaseReport }
func (Failed) Phase() Phase         { return PhaseFailed }
func (SessionExpired) Phase() Phase { return PhaseSessionExpired }

func (Idle) isState()           {}
func (Ready) isState()          {}
func (Submitting) isState()     {}
func (Fetching) isState()       {}
func (WithReport) isState()     {}
func (Failed) isState()         {}
func (SessionExpired) isState() {}

// InFlight reports whether a network call owns the state
func InFlight(s State) bool {
	switch s.(type) {
	case Submitting, Fetching:
		return true
	}
	return false
}
