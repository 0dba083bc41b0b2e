package cli

import (
	"time"

	"github.com/okian/roster/internal/adapters/remote"
	"github.com/spf13/cobra"
)

// NewSheetCommand creates the sheet command, which reads the remote rows.
func NewSheetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sheet",
		Short:         "Show the rows stored by the append store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rootOpts.Config
			if cfg.RemoteURL == "" {
				return NewExitError(ExitCommandError, "no remote URL: set --remote-url or ROSTER_REMOTE_URL")
			}
			client := remote.New(cfg.RemoteURL,
				remote.WithTimeout(time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond))
			rows, err := client.Rows(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "read remote sheet", err)
			}
			out := rootOpts.output(cmd)
			if out.JSON() {
				return out.WriteJSON(rows)
			}
			return writeRows(out, rows.Rows)
		},
	}
}
