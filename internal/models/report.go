package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents how serious a detected issue is
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue represents a single migration problem found in an artifact
type Issue struct {
	Severity Severity `json:"severity"`
	Issue    string   `json:"issue"`
	LineHint string   `json:"line_hint,omitempty"`
	Fix      string   `json:"fix,omitempty"`
}

// MigrationReport represents a completed analysis as stored by the service
type MigrationReport struct {
	ID             string    `json:"id"`
	CreatedAt      Timestamp `json:"created_at"`
	FilesAnalyzed  []string  `json:"files_analyzed"`
	Issues         []Issue   `json:"issues"`
	IsValidPython3 bool      `json:"is_valid_python3"`
	Summary        string    `json:"summary"`
}

// HighSeverityCount returns the number of high severity issues
func (r *MigrationReport) HighSeverityCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

// SummaryText returns the summary, or a default when the service sent none
func (r *MigrationReport) SummaryText() string {
	if strings.TrimSpace(r.Summary) == "" {
		return "Analysis complete."
	}
	return r.Summary
}

// MigrationStatus is the coarse status shown in report history
type MigrationStatus string

const (
	MigrationStatusComplete          MigrationStatus = "Complete"
	MigrationStatusPartiallyComplete MigrationStatus = "Partially Complete"
	MigrationStatusNotStarted        MigrationStatus = "Not Started"
)

// Tone is the display category for a status
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
	ToneNeutral Tone = "neutral"
)

// Tone maps a history status to its display category
func (s MigrationStatus) Tone() Tone {
	switch s {
	case MigrationStatusComplete:
		return ToneSuccess
	case MigrationStatusPartiallyComplete:
		return ToneWarning
	case MigrationStatusNotStarted:
		return ToneError
	default:
		return ToneNeutral
	}
}

// ReportSummary is the lightweight projection used for history listing
type ReportSummary struct {
	ID                 string          `json:"id"`
	CreatedAt          Timestamp       `json:"created_at"`
	TotalFilesAnalyzed int             `json:"total_files_analyzed"`
	MigrationStatus    MigrationStatus `json:"migration_status"`
	IssuesCount        int             `json:"issues_count"`
	RisksCount         int             `json:"risks_count"`

	// Older service versions send the file list instead of a count
	FilesAnalyzed []string `json:"files_analyzed,omitempty"`
}

// FileCount returns the number of analyzed files
func (s ReportSummary) FileCount() int {
	if s.TotalFilesAnalyzed == 0 && len(s.FilesAnalyzed) > 0 {
		return len(s.FilesAnalyzed)
	}
	return s.TotalFilesAnalyzed
}

// ReportList is the body of GET /migration/reports
type ReportList struct {
	Reports []ReportSummary `json:"reports"`
}

// AnalysisResponse is the body of POST /migration/analyze
type AnalysisResponse struct {
	ReportID string `json:"report_id"`
	Message  string `json:"message,omitempty"`
}

// StatusThresholds controls how a report's issue count maps to a label.
// These are display heuristics only.
type StatusThresholds struct {
	MinorIssues int
}

// DefaultStatusThresholds returns the thresholds used by the web client
func DefaultStatusThresholds() StatusThresholds {
	return StatusThresholds{MinorIssues: 3}
}

// StatusLabel is the headline shown for a loaded report
type StatusLabel struct {
	Text string
	Tone Tone
}

// Label derives the headline for a report
func (t StatusThresholds) Label(r *MigrationReport) StatusLabel {
	if r.IsValidPython3 {
		return StatusLabel{Text: "Valid Python 3", Tone: ToneSuccess}
	}
	switch n := len(r.Issues); {
	case n == 0:
		return StatusLabel{Text: "No Issues Found", Tone: ToneSuccess}
	case n <= t.MinorIssues:
		return StatusLabel{Text: "Minor Issues Found", Tone: ToneWarning}
	default:
		return StatusLabel{Text: "Issues Found", Tone: ToneError}
	}
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO 8601 form the
// service emits for stored datetimes (treated as UTC).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
