package cli

import (
	"errors"
	"fmt"

	"github.com/akrishnanDG/migration-analyzer/internal/gateway"
	"github.com/akrishnanDG/migration-analyzer/internal/logging"
	"github.com/akrishnanDG/migration-analyzer/pkg/config"
	"github.com/spf13/cobra"
)

// errSessionExpired is what a command returns after the service rejected
// the stored credential mid-command
var errSessionExpired = errors.New("Session expired. Please log in again.")

// rootOptions holds the global flags and the resolved configuration
type rootOptions struct {
	configFile string
	flagConfig *config.Config
	cfg        *config.Config
	closeLog   func() error
}

// NewRootCmd creates the root command
func NewRootCmd(version, buildTime string) *cobra.Command {
	opts := &rootOptions{flagConfig: config.NewDefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "migration-analyzer",
		Short: "Analyze Python 2 code for Python 3 migration issues",
		Long: `A command-line client for the migration analysis service.

Upload a Python file or ZIP archive, get back a report of the constructs
that need attention before moving to Python 3, and manage your report
history.

Features:
  - Persistent login across invocations
  - Client-side checks before any upload
  - Report history with paging and confirmed deletion
  - Table or JSON output`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file path")
	flags.StringVar(&opts.flagConfig.API.BaseURL, "api-url", opts.flagConfig.API.BaseURL, "Analysis service base URL")
	flags.StringVar(&opts.flagConfig.Output.LogLevel, "log-level", opts.flagConfig.Output.LogLevel, "Log level: debug, info, warn, error")
	flags.StringVarP(&opts.flagConfig.Output.Format, "output", "o", opts.flagConfig.Output.Format, "Output format: table, json")

	// Add subcommands
	rootCmd.AddCommand(NewLoginCmd(opts))
	rootCmd.AddCommand(NewRegisterCmd(opts))
	rootCmd.AddCommand(NewLogoutCmd(opts))
	rootCmd.AddCommand(NewWhoamiCmd(opts))
	rootCmd.AddCommand(NewAnalyzeCmd(opts))
	rootCmd.AddCommand(NewReportsCmd(opts))
	rootCmd.AddCommand(NewValidateCmd(opts))
	rootCmd.AddCommand(NewVersionCmd(version, buildTime))

	return rootCmd
}

// resolve loads the config file, applies the environment, and lets
// explicitly set flags win
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if o.configFile != "" {
		loaded, err := config.LoadFromFile(o.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	cfg = mergeConfigs(cfg, o.flagConfig, cmd)

	o.closeLog = logging.Setup(cfg.Output.LogLevel, cfg.Output.LogFile)
	o.cfg = cfg
	return nil
}

// mergeConfigs merges loaded config with CLI flags, giving precedence to CLI flags
func mergeConfigs(fileConfig, cliConfig *config.Config, cmd *cobra.Command) *config.Config {
	merged := fileConfig

	// Override with CLI flags if they were explicitly set
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		merged.API.BaseURL = cliConfig.API.BaseURL
	}
	if flags.Changed("log-level") {
		merged.Output.LogLevel = cliConfig.Output.LogLevel
	}
	if flags.Changed("output") {
		merged.Output.Format = cliConfig.Output.Format
	}

	return merged
}

// config returns the resolved configuration after validating it
func (o *rootOptions) config() (*config.Config, error) {
	if o.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed:\n%w", err)
	}
	return o.cfg, nil
}

// userError converts a session expiry into the message shown to the user
func userError(err error) error {
	if errors.Is(err, gateway.ErrSessionExpired) {
		return errSessionExpired
	}
	return err
}
