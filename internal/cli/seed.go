package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rpggio/boardsum/internal/sqlite"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a YAML board fixture into the local SQLite board",
		Long: `Load lists, custom fields and cards from a YAML fixture into the board
database named by board.dsn. Only sqlite:// boards can be seeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if cfg.UsesTrello() {
				return errors.New("seed requires a sqlite:// board dsn")
			}
			fixture, err := sqlite.LoadFixture(args[0])
			if err != nil {
				return err
			}

			a, cleanup, err := setup(cfg, commandLogger(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			data := map[string]int{
				"lists":  len(fixture.Lists),
				"fields": len(fixture.Fields),
				"cards":  len(fixture.Cards),
			}
			store := sqlite.NewBoardStore(a.DB)
			if err := store.Seed(cmd.Context(), fixture); err != nil {
				return out.Failure(data, fmt.Errorf("seed: %w", err))
			}
			return out.Success(data, func(w io.Writer) {
				fmt.Fprintf(w, "Seeded %d lists, %d fields, %d cards\n",
					len(fixture.Lists), len(fixture.Fields), len(fixture.Cards))
			})
		},
	}
}
