package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
)

func newResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all imported transactions and their overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reset transactions, overrides and upload status")
				return nil
			})
		},
	}
}
