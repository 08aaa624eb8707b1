package cli

import (
	"errors"
	"fmt"

	"github.com/akrishnanDG/migration-analyzer/internal/registry"
	"github.com/spf13/cobra"
)

// NewReportsCmd creates the reports command group
func NewReportsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List, show, and delete stored reports",
	}

	cmd.AddCommand(newReportsListCmd(opts))
	cmd.AddCommand(newReportsShowCmd(opts))
	cmd.AddCommand(newReportsDeleteCmd(opts))

	return cmd
}

func newReportsListCmd(opts *rootOptions) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your reports in the order the service returns them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				opts.cfg.Reports.PageSize = limit
			}

			a, err := newAppFor(opts)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			reports, err := a.registry.List(cmd.Context(), skip)
			if err != nil {
				return userError(err)
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			printReportList(cmd.OutOrStdout(), reports, skip, a.registry.PageSize())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&skip, "skip", 0, "Number of reports to skip")
	flags.IntVar(&limit, "limit", 0, "Reports per page (default from config)")

	return cmd
}

func newReportsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			report, err := a.registry.Fetch(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report, a.thresholds(), nil, 0)
			return nil
		},
	}
}

func newReportsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <report-id>",
		Short: "Delete a stored report",
		Long: `Delete a stored report. You are asked to confirm unless --yes is given.
Outside a terminal --yes is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			var confirmer registry.Confirmer
			switch {
			case yes:
				confirmer = registry.AlwaysConfirm
			case interactive():
				confirmer = huhConfirmer{}
			default:
				return errors.New("refusing to delete without confirmation; pass --yes")
			}

			err = a.registry.Delete(cmd.Context(), args[0], confirmer)
			if errors.Is(err, registry.ErrDeleteCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted report %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}
