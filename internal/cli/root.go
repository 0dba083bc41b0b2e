// Package cli implements the roster command line client.
package cli

import (
	"fmt"
	"slices"

	"github.com/okian/roster/internal/config"
	"github.com/okian/roster/pkg/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	StatePath string
	RemoteURL string
	Format    string // "json" | "text"
	Verbose   bool

	// Config is loaded before any subcommand runs; flags override it.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the roster CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Skills registration client",
		Long: `Fill in and submit registration entries (matricule, name, work area,
technologies). Entries are kept in a local state file and, when a remote URL
is set, delivered to the append store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.StatePath, "state", "", "local state file (overrides ROSTER_STATE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.RemoteURL, "remote-url", "", "append store URL (overrides ROSTER_REMOTE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewSheetCommand(opts))
	cmd.AddCommand(NewLoadCheckCommand(opts))

	return cmd
}

// load initializes logging on stderr and resolves configuration.
func (o *RootOptions) load(cmd *cobra.Command) error {
	if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
		return WrapExitError(ExitCommandError, "init logging", err)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.StatePath != "" {
		cfg.StatePath = o.StatePath
	}
	if cmd.Flags().Changed("remote-url") {
		cfg.RemoteURL = o.RemoteURL
	}

	level := cfg.LogLevel
	if o.Verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		_ = logger.SetLevelString("info")
	}

	o.Config = cfg
	return nil
}

func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return NewOutputFormatter(o.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
