package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/spf13/cobra"
)

// NewRecomputeCommand creates the recompute command.
func NewRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute every summary total once and exit",
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
			result, err := a.Recomputer.Recompute(cmd.Context())
			if err != nil {
				return out.Failure(result, fmt.Errorf("recompute: %w", err))
			}
			return out.Success(result, func(w io.Writer) { printResult(w, result) })
		},
	}
}

func printResult(w io.Writer, result *summary.Result) {
	if result == nil {
		fmt.Fprintln(w, "Recompute already in progress; queued.")
		return
	}
	fmt.Fprintf(w, "Run %s: %d cards counted, %d skipped in %s\n",
		result.RunID, result.Counted, result.Skipped, result.Duration)
	printTotals(w, result.Totals)
	printTotals(w, result.ScopedTotals)
	for _, name := range sortedKeys(result.ListCounts) {
		fmt.Fprintf(w, "  %s: %d\n", name, result.ListCounts[name])
	}
}

func printTotals(w io.Writer, totals map[string]float64) {
	for _, name := range sortedKeys(totals) {
		fmt.Fprintf(w, "  %s: %s\n", name, board.FormatQuantity(totals[name]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
