package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
	"github.com/cleared-dev/cardspend/internal/model"
)

func newOverrideCommand(opts *rootOptions) *cobra.Command {
	overrideCmd := &cobra.Command{
		Use:   "override",
		Short: "Override the category or need/want of a transaction",
		Long: "Override the category or need/want of a transaction.\n\n" +
			"Transactions are addressed by key (date|description|amount, see\n" +
			"\"transactions list\"); an override applies to every transaction sharing the key.",
	}

	overrideCmd.AddCommand(&cobra.Command{
		Use:   "category <key> <category-id>",
		Short: "Set the category of a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.SetCategoryOverride(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category of %s set to %s\n", args[0], args[1])
				return nil
			})
		},
	})

	overrideCmd.AddCommand(&cobra.Command{
		Use:   "need-want <key> need|want|auto",
		Short: "Set the need/want classification of a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := model.ParseNeedWant(args[1])
			if !ok {
				return fmt.Errorf("invalid need/want %q: expected need, want or auto", args[1])
			}
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.SetNeedWantOverride(cmd.Context(), args[0], v); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Need/want of %s set to %s\n", args[0], v)
				return nil
			})
		},
	})

	overrideCmd.AddCommand(&cobra.Command{
		Use:   "clear <key>",
		Short: "Remove both overrides of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				a.ClearOverride(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared overrides of %s\n", args[0])
				return nil
			})
		},
	})

	return overrideCmd
}
