package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/internal/validator"
)

// fakeAPI records calls and optionally blocks until released
type fakeAPI struct {
	mu          sync.Mutex
	analyzeIDs  []string
	reports     map[string]*models.MigrationReport
	analyzeErr  error
	getErr      error
	analyzeGate chan struct{}
	getGate     chan struct{}

	analyzeCalls atomic.Int32
	getCalls     atomic.Int32
	started      chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		reports: make(map[string]*models.MigrationReport),
		started: make(chan string, 16),
	}
}

func (f *fakeAPI) Analyze(ctx context.Context, artifact *models.Artifact, cfg models.MigrationConfig) (string, error) {
	f.analyzeCalls.Add(1)
	f.started <- "analyze:" + artifact.Name
	if f.analyzeGate != nil {
		select {
		case <-f.analyzeGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.analyzeIDs[0]
	f.analyzeIDs = f.analyzeIDs[1:]
	return id, nil
}

func (f *fakeAPI) GetReport(ctx context.Context, reportID string) (*models.MigrationReport, error) {
	f.getCalls.Add(1)
	f.started <- "get:" + reportID
	if f.getGate != nil {
		select {
		case <-f.getGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[reportID]
	if !ok {
		return nil, &gateway.RequestError{Op: "get_report", StatusCode: 404, Message: "Report not found"}
	}
	copied := *report
	return &copied, nil
}

func defaultConfig() models.MigrationConfig {
	return models.MigrationConfig{SourceVersion: "Python 2", TargetVersion: "Python 3"}
}

func newTestOrchestrator(api *fakeAPI) *Orchestrator {
	v := validator.NewWithRules([]string{".py", ".zip"}, 10*1024*1024)
	return New(api, v, defaultConfig())
}

// recordPhases subscribes to o and returns a snapshot function
func recordPhases(o *Orchestrator) func() []Phase {
	var mu sync.Mutex
	var phases []Phase
	o.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase())
	})
	return func() []Phase {
		mu.Lock()
		defer mu.Unlock()
		return append([]Phase(nil), phases...)
	}
}

func waitStarted(t *testing.T, api *fakeAPI, expected string) {
	t.Helper()
	select {
	case got := <-api.started:
		if got != expected {
			t.Fatalf("started %q, expected %q", got, expected)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", expected)
	}
}

func TestAnalyze_SubmitThenFetch(t *testing.T) {
	api := newFakeAPI()
	api.analyzeIDs = []string{"abc123"}
	api.reports["abc123"] = &models.MigrationReport{
		ID: "abc123",
		Issues: []models.Issue{
			{Severity: models.SeverityHigh, Issue: "print statement"},
			{Severity: models.SeverityLow, Issue: "xrange"},
		},
	}

	o := newTestOrchestrator(api)
	phases := recordPhases(o)

	if err := o.Select(models.ArtifactFromBytes("legacy.py", []byte("print 'hi'\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	report, err := o.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.ID != "abc123" {
		t.Errorf("report ID = %q, expected %q", report.ID, "abc123")
	}
	if len(report.Issues) != 2 {
		t.Errorf("issues = %d, expected 2", len(report.Issues))
	}
	label := models.DefaultStatusThresholds().Label(report)
	if label.Text != "Minor Issues Found" {
		t.Errorf("label = %q, expected %q", label.Text, "Minor Issues Found")
	}

	expected := []Phase{PhaseReady, PhaseSubmitting, PhaseFetching, PhaseReport}
	got := phases()
	if len(got) != len(expected) {
		t.Fatalf("phases = %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("phase[%d] = %s, expected %s", i, got[i], expected[i])
		}
	}

	// Fetch must follow submit
	if a, g := <-api.started, <-api.started; a != "analyze:legacy.py" || g != "get:abc123" {
		t.Errorf("call order = %s, %s", a, g)
	}

	loaded, ok := o.Report()
	if !ok || loaded.ID != "abc123" {
		t.Errorf("Report() = %v, %v", loaded, ok)
	}
}

func TestSelect_RejectsUnsupportedType(t *testing.T) {
	api := newFakeAPI()
	o := newTestOrchestrator(api)

	err := o.Select(models.ArtifactFromBytes("notes.txt", []byte("hello")))

	var rejection *validator.Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected Rejection, got %v", err)
	}
	if rejection.Reason != validator.ReasonUnsupportedType {
		t.Errorf("reason = %q, expected %q", rejection.Reason, validator.ReasonUnsupportedType)
	}

	state, ok := o.State().(Failed)
	if !ok {
		t.Fatalf("state = %T, expected Failed", o.State())
	}
	if state.Message != "unsupported file type" {
		t.Errorf("message = %q, expected %q", state.Message, "unsupported file type")
	}

	// The rejected artifact was not kept
	if _, err := o.Analyze(context.Background()); err == nil {
		t.Fatal("expected Analyze to fail without a selection")
	}
	if api.analyzeCalls.Load() != 0 {
		t.Errorf("analyze calls = %d, expected 0", api.analyzeCalls.Load())
	}
}

func TestAnalyze_WithoutSelection(t *testing.T) {
	api := newFakeAPI()
	o := newTestOrchestrator(api)

	_, err := o.Analyze(context.Background())
	if err == nil || err.Error() != validator.ReasonNoFile {
		t.Fatalf("error = %v, expected %q", err, validator.ReasonNoFile)
	}
	if o.State().Phase() != PhaseFailed {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseFailed)
	}
	if api.analyzeCalls.Load() != 0 {
		t.Errorf("analyze calls = %d, expected 0", api.analyzeCalls.Load())
	}
}

func TestAnalyze_MissingVersion(t *testing.T) {
	api := newFakeAPI()
	o := newTestOrchestrator(api)
	o.SetConfig(models.MigrationConfig{SourceVersion: "Python 2"})

	if err := o.Select(models.ArtifactFromBytes("app.py", []byte("x = 1\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	_, err := o.Analyze(context.Background())
	if err == nil || err.Error() != validator.ReasonMissingTarget {
		t.Fatalf("error = %v, expected %q", err, validator.ReasonMissingTarget)
	}
	if api.analyzeCalls.Load() != 0 {
		t.Errorf("analyze calls = %d, expected 0", api.analyzeCalls.Load())
	}
}

func TestAnalyze_SecondCallWhileInFlight(t *testing.T) {
	api := newFakeAPI()
	api.analyzeIDs = []string{"r1"}
	api.reports["r1"] = &models.MigrationReport{ID: "r1"}
	api.analyzeGate = make(chan struct{})

	o := newTestOrchestrator(api)
	if err := o.Select(models.ArtifactFromBytes("app.py", []byte("x = 1\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.Analyze(context.Background())
		done <- err
	}()
	waitStarted(t, api, "analyze:app.py")

	if _, err := o.Analyze(context.Background()); !errors.Is(err, ErrAlreadyAnalyzing) {
		t.Fatalf("second Analyze error = %v, expected ErrAlreadyAnalyzing", err)
	}
	if o.State().Phase() != PhaseSubmitting {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseSubmitting)
	}

	close(api.analyzeGate)
	if err := <-done; err != nil {
		t.Fatalf("first Analyze failed: %v", err)
	}
	if api.analyzeCalls.Load() != 1 {
		t.Errorf("analyze calls = %d, expected 1", api.analyzeCalls.Load())
	}
}

func TestAnalyze_StaleResultDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.analyzeIDs = []string{"old"}
	api.reports["old"] = &models.MigrationReport{ID: "old"}
	api.analyzeGate = make(chan struct{})

	o := newTestOrchestrator(api)
	if err := o.Select(models.ArtifactFromBytes("first.py", []byte("a\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.Analyze(context.Background())
		done <- err
	}()
	waitStarted(t, api, "analyze:first.py")

	second := models.ArtifactFromBytes("second.py", []byte("b\n"))
	if err := o.Select(second); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	close(api.analyzeGate)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("error = %v, expected ErrSuperseded", err)
	}

	ready, ok := o.State().(Ready)
	if !ok {
		t.Fatalf("state = %T, expected Ready", o.State())
	}
	if ready.Artifact.Name != "second.py" {
		t.Errorf("artifact = %q, expected %q", ready.Artifact.Name, "second.py")
	}
	if api.getCalls.Load() != 0 {
		t.Errorf("get calls = %d, expected 0", api.getCalls.Load())
	}
}

func TestAnalyze_RequestFailure(t *testing.T) {
	api := newFakeAPI()
	api.analyzeErr = &gateway.RequestError{Op: "analyze", StatusCode: 400, Message: "File must be a Python file or ZIP archive"}

	o := newTestOrchestrator(api)
	if err := o.Select(models.ArtifactFromBytes("app.py", []byte("x\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	_, err := o.Analyze(context.Background())
	var reqErr *gateway.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}

	failed, ok := o.State().(Failed)
	if !ok {
		t.Fatalf("state = %T, expected Failed", o.State())
	}
	if failed.Message != "File must be a Python file or ZIP archive" {
		t.Errorf("message = %q", failed.Message)
	}
	if api.getCalls.Load() != 0 {
		t.Errorf("get calls = %d, expected 0", api.getCalls.Load())
	}

	// The selection survives a failure, so a retry resubmits it
	api.analyzeErr = nil
	api.analyzeIDs = []string{"r2"}
	api.reports["r2"] = &models.MigrationReport{ID: "r2", IsValidPython3: true}

	report, err := o.Analyze(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if report.ID != "r2" {
		t.Errorf("report ID = %q, expected %q", report.ID, "r2")
	}
	if api.analyzeCalls.Load() != 2 {
		t.Errorf("analyze calls = %d, expected 2", api.analyzeCalls.Load())
	}
}

func TestAnalyze_SessionExpired(t *testing.T) {
	api := newFakeAPI()
	api.analyzeIDs = []string{"r1"}
	api.getErr = gateway.ErrSessionExpired

	o := newTestOrchestrator(api)
	var hookCalls atomic.Int32
	o.OnSessionExpired(func() {
		hookCalls.Add(1)
		o.Reset()
	})
	phases := recordPhases(o)

	if err := o.Select(models.ArtifactFromBytes("app.py", []byte("x\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	_, err := o.Analyze(context.Background())
	if !errors.Is(err, gateway.ErrSessionExpired) {
		t.Fatalf("error = %v, expected ErrSessionExpired", err)
	}
	if hookCalls.Load() != 1 {
		t.Errorf("hook calls = %d, expected 1", hookCalls.Load())
	}
	if o.State().Phase() != PhaseIdle {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseIdle)
	}

	got := phases()
	if len(got) < 2 || got[len(got)-2] != PhaseSessionExpired {
		t.Errorf("phases = %v, expected session_expired before idle", got)
	}
}

func TestViewReport(t *testing.T) {
	api := newFakeAPI()
	api.reports["hist1"] = &models.MigrationReport{Summary: "ok"}

	o := newTestOrchestrator(api)

	report, err := o.ViewReport(context.Background(), "hist1")
	if err != nil {
		t.Fatalf("ViewReport failed: %v", err)
	}
	if report.ID != "hist1" {
		t.Errorf("report ID = %q, expected %q", report.ID, "hist1")
	}
	if o.State().Phase() != PhaseReport {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseReport)
	}
	if api.analyzeCalls.Load() != 0 {
		t.Errorf("analyze calls = %d, expected 0", api.analyzeCalls.Load())
	}

	if _, err := o.ViewReport(context.Background(), " "); !errors.Is(err, ErrNoReportID) {
		t.Errorf("error = %v, expected ErrNoReportID", err)
	}
}

func TestViewReport_NotFound(t *testing.T) {
	api := newFakeAPI()
	o := newTestOrchestrator(api)

	_, err := o.ViewReport(context.Background(), "missing")
	if err == nil || err.Error() != "Report not found" {
		t.Fatalf("error = %v, expected %q", err, "Report not found")
	}
	if o.State().Phase() != PhaseFailed {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseFailed)
	}
}

func TestReset(t *testing.T) {
	api := newFakeAPI()
	api.reports["r1"] = &models.MigrationReport{ID: "r1"}

	o := newTestOrchestrator(api)
	if _, err := o.ViewReport(context.Background(), "r1"); err != nil {
		t.Fatalf("ViewReport failed: %v", err)
	}

	o.Reset()
	o.Reset()

	if o.State().Phase() != PhaseIdle {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseIdle)
	}
	if _, ok := o.Report(); ok {
		t.Error("expected no report after Reset")
	}
}

func TestInFlight(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{Idle{}, false},
		{Ready{}, false},
		{Submitting{}, true},
		{Fetching{ReportID: "x"}, true},
		{WithReport{}, false},
		{Failed{Message: "x"}, false},
		{SessionExpired{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state.Phase()), func(t *testing.T) {
			if got := InFlight(tt.state); got != tt.expected {
				t.Errorf("InFlight(%s) = %v, expected %v", tt.state.Phase(), got, tt.expected)
			}
		})
	}
}

func TestViewReport_ResetWhileFetching(t *testing.T) {
	api := newFakeAPI()
	api.reports["r1"] = &models.MigrationReport{ID: "r1"}
	api.getGate = make(chan struct{})

	o := newTestOrchestrator(api)

	done := make(chan error, 1)
	go func() {
		_, err := o.ViewReport(context.Background(), "r1")
		done <- err
	}()
	waitStarted(t, api, "get:r1")

	if o.State().Phase() != PhaseFetching {
		t.Fatalf("phase = %s, expected %s", o.State().Phase(), PhaseFetching)
	}
	o.Reset()

	close(api.getGate)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("error = %v, expected ErrSuperseded", err)
	}
	if o.State().Phase() != PhaseIdle {
		t.Errorf("phase = %s, expected %s", o.State().Phase(), PhaseIdle)
	}
	if _, ok := o.Report(); ok {
		t.Error("expected no report after Reset")
	}
}

func TestAnalyze_SelectWhileFetching(t *testing.T) {
	api := newFakeAPI()
	api.analyzeIDs = []string{"r1"}
	api.reports["r1"] = &models.MigrationReport{ID: "r1"}
	api.getGate = make(chan struct{})

	o := newTestOrchestrator(api)
	if err := o.Select(models.ArtifactFromBytes("first.py", []byte("a\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.Analyze(context.Background())
		done <- err
	}()
	waitStarted(t, api, "analyze:first.py")
	waitStarted(t, api, "get:r1")

	if err := o.Select(models.ArtifactFromBytes("second.py", []byte("b\n"))); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	close(api.getGate)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("error = %v, expected ErrSuperseded", err)
	}

	ready, ok := o.State().(Ready)
	if !ok {
		t.Fatalf("state = %T, expected Ready", o.State())
	}
	if ready.Artifact.Name != "second.py" {
		t.Errorf("artifact = %q, expected %q", ready.Artifact.Name, "second.py")
	}
}

func TestViewReport_LaterViewWins(t *testing.T) {
	api := newFakeAPI()
	api.reports["a"] = &models.MigrationReport{ID: "a"}
	api.reports["b"] = &models.MigrationReport{ID: "b"}
	api.getGate = make(chan struct{})

	o := newTestOrchestrator(api)

	first := make(chan error, 1)
	go func() {
		_, err := o.ViewReport(context.Background(), "a")
		first <- err
	}()
	waitStarted(t, api, "get:a")

	second := make(chan error, 1)
	go func() {
		_, err := o.ViewReport(context.Background(), "b")
		second <- err
	}()
	waitStarted(t, api, "get:b")

	close(api.getGate)
	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first error = %v, expected ErrSuperseded", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second ViewReport failed: %v", err)
	}

	report, ok := o.Report()
	if !ok || report.ID != "b" {
		t.Errorf("Report() = %v, %v, expected b", report, ok)
	}
}

func TestSubscribe_DeliversInOrder(t *testing.T) {
	o := newTestOrchestrator(newFakeAPI())

	var mu sync.Mutex
	var last State
	var mismatches int
	o.Subscribe(func(s State) {
		// No other transition may land while s is being delivered
		if current := o.State(); current != s {
			mu.Lock()
			mismatches++
			mu.Unlock()
		}
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py"} {
		artifact := models.ArtifactFromBytes(name, []byte("x\n"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				o.Select(artifact)
				o.Reset()
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if mismatches != 0 {
		t.Errorf("observer saw %d transitions out of order", mismatches)
	}
	if last != o.State() {
		t.Errorf("last observed = %v, expected %v", last, o.State())
	}
}
