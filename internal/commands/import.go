package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <card-id> <file.csv>",
		Short: "Import a card statement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			return opts.withApp(cmd, func(a *app.App) error {
				sum, err := a.Import(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %s\n", len(sum.Transactions), sum.Card.Name)
				if n := len(sum.Skipped); n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d rows\n", n)
				}
				return nil
			})
		},
	}
}
