package cli

import (
	"strings"

	"github.com/okian/roster/internal/domain/catalog"
	"github.com/spf13/cobra"
)

type catalogView struct {
	WorkAreas    []catalog.WorkArea `json:"workAreas"`
	Technologies []string           `json:"technologies"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "catalog",
		Short:         "List selectable work areas and technologies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := catalog.FromConfig(rootOpts.Config)
			out := rootOpts.output(cmd)
			view := catalogView{WorkAreas: cat.WorkAreas(), Technologies: cat.Technologies()}
			if out.JSON() {
				return out.WriteJSON(view)
			}

			rows := make([][]string, 0, len(view.WorkAreas))
			for _, wa := range view.WorkAreas {
				rows = append(rows, []string{wa.ID, wa.Label})
			}
			if err := out.Table([]string{"Work area", "Label"}, rows); err != nil {
				return err
			}
			out.Println()
			out.Println("Technologies: " + strings.Join(view.Technologies, ", "))
			return nil
		},
	}
}
