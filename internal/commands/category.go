package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
	"github.com/cleared-dev/cardspend/internal/model"
)

func newCategoryCommand(opts *rootOptions) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage custom categories",
	}
	categoryCmd.AddCommand(
		newCategoryAddCommand(opts),
		newCategorySetTypeCommand(opts),
		newCategoryListCommand(opts),
	)
	return categoryCmd
}

func newCategoryAddCommand(opts *rootOptions) *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				c, err := a.AddCategory(cmd.Context(), args[0], model.CategoryType(categoryType))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&categoryType, "type", "", "category type: need or want (required)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newCategorySetTypeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-type <category-id> need|want",
		Short: "Change whether a category is a need or a want",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.SetCategoryType(cmd.Context(), args[0], model.CategoryType(args[1])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newCategoryListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				cats, err := a.Categories(cmd.Context())
				if err != nil {
					return err
				}
				if len(cats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No categories")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE")
				for _, c := range cats {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.CategoryType)
				}
				return tw.Flush()
			})
		},
	}
}
