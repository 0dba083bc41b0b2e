package cli

import (
	"errors"

	"github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/delivery"
	"github.com/okian/roster/internal/domain/form"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
	"github.com/spf13/cobra"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	ID           string
	Name         string
	WorkArea     string
	Technologies []string
}

// submitResult is the JSON shape of the submit command.
type submitResult struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Record   *model.Record     `json:"record,omitempty"`
	Delivery *delivery.Outcome `json:"delivery,omitempty"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one registration entry",
		Long: `Submit one registration entry. The entry is saved to the local state file
first, then delivered to the append store when a remote URL is set. The
command waits for delivery up to the configured drain timeout.

Example:
  roster submit --matricule X123 --name Dana --work-area backend --tech Java --tech Spring`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "matricule", "", "matricule (id)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "alias of --matricule")
	cmd.Flags().StringVar(&opts.Name, "name", "", "full name")
	cmd.Flags().StringVar(&opts.WorkArea, "work-area", "", "work area id")
	cmd.Flags().StringArrayVar(&opts.Technologies, "tech", nil, "technology; repeat to select several, repeating one deselects it")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts *SubmitOptions) error {
	ctx := cmd.Context()
	out := opts.output(cmd)

	sess := app.NewSession(opts.Config)
	if err := sess.Open(ctx); err != nil {
		return WrapExitError(ExitCommandError, "open local state", err)
	}

	c := sess.Controller()
	if err := c.UpdateField(form.FieldID, opts.ID); err != nil {
		return WrapExitError(ExitCommandError, "set matricule", err)
	}
	if err := c.UpdateField(form.FieldName, opts.Name); err != nil {
		return WrapExitError(ExitCommandError, "set name", err)
	}
	if opts.WorkArea != "" {
		c.ToggleWorkArea(opts.WorkArea)
	}
	for _, t := range opts.Technologies {
		c.ToggleTechnology(t)
	}

	if c.Draft().IsEmpty() {
		_ = sess.Close(ctx)
		return NewExitError(ExitCommandError, "nothing to submit: set --matricule, --name, --work-area and --tech")
	}

	rec, submitErr := c.Submit(ctx)

	// Local success stands even if delivery does not finish in time.
	closeErr := sess.Close(ctx)

	res := submitResult{Success: submitErr == nil, Message: form.Message(submitErr)}
	if submitErr == nil {
		res.Record = &rec
		if o, ok := sess.Ledger().Get(rec.ID); ok {
			res.Delivery = &o
		}
	}

	if out.JSON() {
		if err := out.WriteJSON(res); err != nil {
			return err
		}
	} else {
		out.Println(res.Message)
		if res.Delivery != nil {
			line := "remote: " + string(res.Delivery.Status)
			if res.Delivery.Error != "" {
				line += " (" + res.Delivery.Error + ")"
			}
			out.Println(line)
		}
		if res.Record != nil {
			out.Println("submitted at: " + res.Record.SubmittedAt)
		}
	}

	if closeErr != nil {
		logger.Get().Warn(ctx, "remote delivery incomplete", logger.Error(closeErr))
	}

	switch {
	case submitErr == nil:
		return nil
	case errors.Is(submitErr, form.ErrPersist), form.IsValidation(submitErr):
		return WrapExitError(ExitCommandError, res.Message, submitErr)
	default:
		return WrapExitError(ExitFailure, res.Message, submitErr)
	}
}
