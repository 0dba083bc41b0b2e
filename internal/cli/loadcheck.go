package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/roster/internal/loadcheck"
	"github.com/spf13/cobra"
)

// LoadCheckOptions holds flags for the loadcheck command.
type LoadCheckOptions struct {
	*RootOptions
	BaseURL string
	Config  loadcheck.Config
}

// NewLoadCheckCommand creates the loadcheck command.
func NewLoadCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadCheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "loadcheck",
		Short: "Hammer an append store with overlapping ids and verify its rows",
		Long: `Submit every generated id several times, concurrently and in varied case
and padding, then read the sheet back and check that each id was stored
exactly once.

Example:
  roster loadcheck --url http://localhost:9080 --unique 1000 --repeats 5 --workers 32`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoadCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "url", "http://localhost:9080", "append store base URL")
	cmd.Flags().IntVar(&opts.Config.Unique, "unique", loadcheck.DefaultUnique, "distinct ids to generate")
	cmd.Flags().IntVar(&opts.Config.Repeats, "repeats", loadcheck.DefaultRepeats, "submissions per id")
	cmd.Flags().IntVar(&opts.Config.Workers, "workers", 0, "concurrent submitters (default CPU cores * 2)")
	cmd.Flags().DurationVar(&opts.Config.Timeout, "timeout", loadcheck.DefaultTimeout, "per request timeout")

	return cmd
}

func runLoadCheck(cmd *cobra.Command, opts *LoadCheckOptions) error {
	cfg := opts.Config
	cfg.BaseURL = opts.BaseURL

	report, err := loadcheck.Run(cmd.Context(), cfg)
	if report == nil {
		return WrapExitError(ExitCommandError, "load check", err)
	}

	out := opts.output(cmd)
	if out.JSON() {
		if werr := out.WriteJSON(report); werr != nil {
			return werr
		}
	} else {
		_ = out.Table([]string{"Metric", "Value"}, [][]string{
			{"unique ids", fmt.Sprint(report.Unique)},
			{"submitted", fmt.Sprint(report.Submitted)},
			{"accepted", fmt.Sprint(report.Accepted)},
			{"duplicate", fmt.Sprint(report.Duplicate)},
			{"rejected", fmt.Sprint(report.Rejected)},
			{"failed", fmt.Sprint(report.Failed)},
			{"sheet rows", fmt.Sprint(report.Rows)},
			{"duration", report.Duration.Round(time.Millisecond).String()},
		})
		if len(report.Missing) > 0 {
			out.Println("missing: " + strings.Join(report.Missing, ", "))
		}
		if len(report.Repeated) > 0 {
			out.Println("stored more than once: " + strings.Join(report.Repeated, ", "))
		}
	}

	if err != nil {
		return WrapExitError(ExitFailure, "load check failed", err)
	}
	return nil
}
