package cli

import (
	"github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/model"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history",
		Short:         "List entries submitted from this client",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := app.NewSession(rootOpts.Config)
			rows, err := sess.Controller().History(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "read local state", err)
			}
			return writeRows(rootOpts.output(cmd), rows)
		},
	}
}

func writeRows(out *OutputFormatter, rows []model.Row) error {
	if rows == nil {
		rows = []model.Row{}
	}
	if out.JSON() {
		return out.WriteJSON(rows)
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, r.Values())
	}
	return out.Table(model.Header, table)
}
