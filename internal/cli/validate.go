package cli

import (
	"fmt"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/internal/validator"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate configuration and optionally a file without uploading",
		Long: `Validate the configuration file or command-line arguments without
contacting the service. When a file is given, it is run through the same
checks analyze applies before uploading.

This is useful for checking your setup before running an analysis.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Configuration is valid")

			if len(args) == 0 {
				return nil
			}

			artifact, err := models.ArtifactFromFile(args[0])
			if err != nil {
				return err
			}
			v := validator.New(cfg)
			migration := models.MigrationConfig{
				SourceVersion: cfg.Migration.SourceVersion,
				TargetVersion: cfg.Migration.TargetVersion,
			}
			if err := v.Validate(artifact, migration); err != nil {
				return fmt.Errorf("%s: %w", artifact.Name, err)
			}

			fmt.Fprintf(out, "✓ %s (%s) can be analyzed\n", artifact.Name, humanize.Bytes(uint64(artifact.Size)))
			return nil
		},
	}

	return cmd
}
