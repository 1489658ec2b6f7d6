package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewClearFieldCommand creates the clear-field command.
func NewClearFieldCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-field <summary-field>",
		Short: "Clear one field on the summary card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			a, cleanup, err := setup(cfg, commandLogger(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			data := map[string]string{"field": args[0]}
			if err := a.Summary.ClearSummaryField(cmd.Context(), args[0]); err != nil {
				return out.Failure(data, err)
			}
			return out.Success(data, func(w io.Writer) {
				fmt.Fprintf(w, "Cleared %q on the summary card\n", args[0])
			})
		},
	}
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the custom fields defined on the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			a, cleanup, err := setup(cfg, commandLogger(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			fields, err := a.Board.ListCustomFields(cmd.Context())
			if err != nil {
				return out.Failure(nil, err)
			}
			return out.Success(fields, func(w io.Writer) {
				if len(fields) == 0 {
					fmt.Fprintln(w, "No custom fields.")
					return
				}
				for _, f := range fields {
					fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Type, f.Name)
				}
			})
		},
	}
}
