// Package registry keeps the user's report history in sync with the
// service.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/models"
)

var (
	// ErrDeleteCancelled is returned when the user declines a deletion
	ErrDeleteCancelled = errors.New("delete cancelled")

	// ErrSuperseded is returned by List when Reset or Delete ran while the
	// page was in flight. The page was discarded.
	ErrSuperseded = errors.New("report list superseded")
)

// DeletePrompt is the question put to the Confirmer before a deletion
const DeletePrompt = "Are you sure you want to delete this report?"

// ReportAPI is the part of the gateway the registry needs
type ReportAPI interface {
	ListReports(ctx context.Context, limit, skip int) ([]models.ReportSummary, error)
	DeleteReport(ctx context.Context, reportID string) error
}

// ReportLoader loads a full report into the analysis workflow
type ReportLoader interface {
	ViewReport(ctx context.Context, reportID string) (*models.MigrationReport, error)
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// AlwaysConfirm approves every prompt. Used for non-interactive deletes.
var AlwaysConfirm = ConfirmFunc(func(string) (bool, error) { return true, nil })

// Registry holds the most recently listed page of reports
type Registry struct {
	api      ReportAPI
	loader   ReportLoader
	pageSize int

	mu      sync.Mutex
	reports []models.ReportSummary
	lastErr error

	// generation changes on every Reset and Delete; a page listed under an
	// older generation is never stored
	generation uint64

	onSessionExpired func()
}

// New creates a new Registry
func New(api ReportAPI, loader ReportLoader, pageSize int) *Registry {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Registry{
		api:      api,
		loader:   loader,
		pageSize: pageSize,
		reports:  []models.ReportSummary{},
	}
}

// OnSessionExpired registers the handler run when a call reports expiry
func (r *Registry) OnSessionExpired(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSessionExpired = fn
}

// List fetches one page starting at skip and replaces the held list.
// On failure the previous list is kept and the error is retained for
// display.
func (r *Registry) List(ctx context.Context, skip int) ([]models.ReportSummary, error) {
	if skip < 0 {
		skip = 0
	}

	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	reports, err := r.api.ListReports(ctx, r.pageSize, skip)
	if err != nil && r.expired(err) {
		return nil, err
	}

	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		slog.Debug("discarding stale report list", "skip", skip)
		return nil, ErrSuperseded
	}
	if err != nil {
		r.lastErr = err
		r.mu.Unlock()
		slog.Debug("failed to list reports", "error", err)
		return nil, err
	}
	r.reports = append([]models.ReportSummary(nil), reports...)
	r.lastErr = nil
	r.mu.Unlock()

	return r.Reports(), nil
}

// Reports returns a copy of the held list in server order
func (r *Registry) Reports() []models.ReportSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ReportSummary{}, r.reports...)
}

// Err returns the last list failure, or nil after a successful list
func (r *Registry) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// PageSize returns the number of reports requested per page
func (r *Registry) PageSize() int {
	return r.pageSize
}

// Fetch loads the full report for id through the analysis workflow
func (r *Registry) Fetch(ctx context.Context, reportID string) (*models.MigrationReport, error) {
	return r.loader.ViewReport(ctx, reportID)
}

// Delete removes a report after the user confirms. The entry leaves the
// held list only once the service has confirmed the deletion.
func (r *Registry) Delete(ctx context.Context, reportID string, c Confirmer) error {
	if c == nil {
		return ErrDeleteCancelled
	}
	ok, err := c.Confirm(DeletePrompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeleteCancelled
	}

	if err := r.api.DeleteReport(ctx, reportID); err != nil {
		r.expired(err)
		return err
	}

	r.mu.Lock()
	r.generation++
	kept := r.reports[:0:0]
	for _, s := range r.reports {
		if s.ID != reportID {
			kept = append(kept, s)
		}
	}
	r.reports = kept
	r.mu.Unlock()

	slog.Debug("report deleted", "report_id", reportID)
	return nil
}

// Reset empties the registry. Safe to call repeatedly.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.reports = []models.ReportSummary{}
	r.lastErr = nil
}

// expired runs the expiry handler when err is a session expiry
func (r *Registry) expired(err error) bool {
	if !errors.Is(err, gateway.ErrSessionExpired) {
		return false
	}

	r.mu.Lock()
	hook := r.onSessionExpired
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true
}
