package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/internal/workflow"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var source, target string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a Python file or ZIP archive",
		Long: `Upload a Python file or ZIP archive for migration analysis and print
the resulting report.

The file is checked locally first; unsupported types and oversized files
are rejected without contacting the service.

Examples:
  migration-analyzer analyze legacy.py
  migration-analyzer analyze project.zip --source-version "Python 2.7" --target-version "Python 3.12"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			migration := a.workflow.Config()
			if cmd.Flags().Changed("source-version") {
				migration.SourceVersion = source
			}
			if cmd.Flags().Changed("target-version") {
				migration.TargetVersion = target
			}
			a.workflow.SetConfig(migration)

			return runAnalyze(cmd, a, args[0], a.cfg.Output.Progress && !noProgress)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&source, "source-version", "", "Source version (default from config)")
	flags.StringVar(&target, "target-version", "", "Target version (default from config)")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable the progress spinner")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, path string, progress bool) error {
	artifact, err := models.ArtifactFromFile(path)
	if err != nil {
		return err
	}
	if err := a.workflow.Select(artifact); err != nil {
		return err
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, cancelling analysis...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var stop func()
	if progress && interactive() {
		stop = startSpinner(a.workflow)
	}

	startTime := time.Now()
	report, err := a.workflow.Analyze(ctx)
	duration := time.Since(startTime)

	if stop != nil {
		stop()
	}
	if err != nil {
		return userError(err)
	}

	if a.jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report, a.thresholds(), artifact, duration)
	return nil
}

// startSpinner shows the workflow phase until stop is called
func startSpinner(o *workflow.Orchestrator) (stop func()) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	o.Subscribe(func(s workflow.State) {
		switch s.(type) {
		case workflow.Submitting:
			bar.Describe("Uploading")
		case workflow.Fetching:
			bar.Describe("Fetching report")
		}
	})

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		bar.Finish()
	}
}
