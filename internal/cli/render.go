package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

const rule = "═══════════════════════════════════════════════════════════════"

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")

	boldStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func toneStyle(t models.Tone) lipgloss.Style {
	switch t {
	case models.ToneSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case models.ToneWarning:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case models.ToneError:
		return lipgloss.NewStyle().Foreground(colorError)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}

func severityStyle(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityHigh:
		return toneStyle(models.ToneError).Bold(true)
	case models.SeverityMedium:
		return toneStyle(models.ToneWarning)
	default:
		return toneStyle(models.ToneNeutral)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport prints a loaded report. artifact and duration are shown when
// the report was just produced.
func printReport(w io.Writer, report *models.MigrationReport, thresholds models.StatusThresholds, artifact *models.Artifact, duration time.Duration) {
	label := thresholds.Label(report)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", toneStyle(label.Tone).Bold(true).Render(label.Text))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Report:          %s\n", report.ID)
	if !report.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created:         %s\n", humanize.Time(report.CreatedAt.Time))
	}
	if artifact != nil {
		fmt.Fprintf(w, "  File:            %s (%s)\n", artifact.Name, humanize.Bytes(uint64(artifact.Size)))
	}
	fmt.Fprintf(w, "  Files analyzed:  %d\n", len(report.FilesAnalyzed))
	if high := report.HighSeverityCount(); high > 0 {
		fmt.Fprintf(w, "  Issues:          %d (%d high)\n", len(report.Issues), high)
	} else {
		fmt.Fprintf(w, "  Issues:          %d\n", len(report.Issues))
	}
	if duration > 0 {
		fmt.Fprintf(w, "  Duration:        %s\n", duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w)
	fmt.Fprintln(w, boldStyle.Render("SUMMARY:"))
	fmt.Fprintf(w, "  %s\n", report.SummaryText())

	if len(report.FilesAnalyzed) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, boldStyle.Render("FILES:"))
		for _, f := range report.FilesAnalyzed {
			fmt.Fprintf(w, "  • %s\n", f)
		}
	}

	fmt.Fprintln(w)
	if len(report.Issues) == 0 {
		fmt.Fprintln(w, "No migration issues found.")
		return
	}

	fmt.Fprintln(w, boldStyle.Render("ISSUES:"))
	fmt.Fprintln(w, "───────")
	for i, issue := range report.Issues {
		severity := strings.ToUpper(string(issue.Severity))
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, severityStyle(issue.Severity).Render(severity), issue.Issue)
		if issue.LineHint != "" {
			fmt.Fprintf(w, "     Line: %s\n", mutedStyle.Render(issue.LineHint))
		}
		if issue.Fix != "" {
			fmt.Fprintf(w, "     Fix:  %s\n", issue.Fix)
		}
	}
	fmt.Fprintln(w)
}

// printReportList prints one page of history in the order given
func printReportList(w io.Writer, reports []models.ReportSummary, skip, pageSize int) {
	if len(reports) == 0 {
		if skip > 0 {
			fmt.Fprintln(w, "No more reports.")
			return
		}
		fmt.Fprintln(w, "No reports yet. Run 'migration-analyzer analyze <file>' to create one.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "CREATED", "FILES", "STATUS", "ISSUES", "RISKS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(reports) {
				return cellStyle.Foreground(toneColor(reports[row].MigrationStatus.Tone()))
			}
			return cellStyle
		})

	for _, r := range reports {
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = humanize.Time(r.CreatedAt.Time)
		}
		status := string(r.MigrationStatus)
		if status == "" {
			status = "Unknown"
		}
		t.Row(
			r.ID,
			created,
			strconv.Itoa(r.FileCount()),
			status,
			strconv.Itoa(r.IssuesCount),
			strconv.Itoa(r.RisksCount),
		)
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Showing %d-%d\n", skip+1, skip+len(reports))
	if pageSize > 0 && len(reports) >= pageSize {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("More reports may be available: --skip %d", skip+len(reports))))
	}
}

func toneColor(t models.Tone) lipgloss.Color {
	switch t {
	case models.ToneSuccess:
		return colorSuccess
	case models.ToneWarning:
		return colorWarning
	case models.ToneError:
		return colorError
	default:
		return colorMuted
	}
}

func printUser(w io.Writer, user *models.User, recent []models.ReportSummary) {
	fmt.Fprintf(w, "Email:     %s\n", user.Email)
	if user.Username != "" {
		fmt.Fprintf(w, "Username:  %s\n", user.Username)
	}
	fmt.Fprintf(w, "Reports:   %d on the first page\n", len(recent))
}
