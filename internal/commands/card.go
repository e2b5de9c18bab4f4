package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
	"github.com/cleared-dev/cardspend/internal/model"
)

func newCardCommand(opts *rootOptions) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cardCmd.AddCommand(
		newCardAddCommand(opts),
		newCardSetColumnsCommand(opts),
		newCardMapCommand(opts),
		newCardListCommand(opts),
	)
	return cardCmd
}

// columnFlags registers the four column index flags on cmd.
func columnFlags(cmd *cobra.Command, cols *model.ColumnMapping) {
	def := model.DefaultColumnMapping()
	cmd.Flags().IntVar(&cols.DateColumn, "date", def.DateColumn, "date column index")
	cmd.Flags().IntVar(&cols.AmountColumn, "amount", def.AmountColumn, "amount column index")
	cmd.Flags().IntVar(&cols.CategoryColumn, "category", def.CategoryColumn, "category column index")
	cmd.Flags().IntVar(&cols.DescriptionColumn, "description", def.DescriptionColumn, "description column index")
}

func newCardAddCommand(opts *rootOptions) *cobra.Command {
	var cols model.ColumnMapping

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				card, err := a.AddCard(cmd.Context(), args[0], cols)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added card %s (%s)\n", card.Name, card.ID)
				return nil
			})
		},
	}
	columnFlags(cmd, &cols)
	return cmd
}

func newCardSetColumnsCommand(opts *rootOptions) *cobra.Command {
	var cols model.ColumnMapping

	cmd := &cobra.Command{
		Use:   "set-columns <card-id>",
		Short: "Change the statement column mapping of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				card, err := a.Card(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				// Unset flags keep the card's current index.
				next := card.CSVColumnMapping
				flags := cmd.Flags()
				if flags.Changed("date") {
					next.DateColumn = cols.DateColumn
				}
				if flags.Changed("amount") {
					next.AmountColumn = cols.AmountColumn
				}
				if flags.Changed("category") {
					next.CategoryColumn = cols.CategoryColumn
				}
				if flags.Changed("description") {
					next.DescriptionColumn = cols.DescriptionColumn
				}

				if err := a.SetColumns(cmd.Context(), card.ID, next); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated columns of %s: %s\n", card.Name, formatColumns(next))
				return nil
			})
		},
	}
	columnFlags(cmd, &cols)
	return cmd
}

func newCardMapCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "map <card-id> <card-category> <category-id>",
		Short: "Map a card's category label to a custom category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if err := a.MapCategory(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mapped %q to %s\n", strings.TrimSpace(args[1]), args[2])
				return nil
			})
		},
	}
}

func newCardListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				cards, err := a.Cards(cmd.Context())
				if err != nil {
					return err
				}
				if len(cards) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cards")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCOLUMNS\tMAPPINGS\tUPLOADED")
				for _, c := range cards {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						c.ID, c.Name, formatColumns(c.CSVColumnMapping), formatMappings(c.CategoryMappings), yesNo(c.Uploaded))
				}
				return tw.Flush()
			})
		},
	}
}

func formatColumns(c model.ColumnMapping) string {
	return fmt.Sprintf("date=%d amount=%d category=%d description=%d",
		c.DateColumn, c.AmountColumn, c.CategoryColumn, c.DescriptionColumn)
}

func formatMappings(ms []model.CategoryMapping) string {
	if len(ms) == 0 {
		return "-"
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.CardProvidedCategory + "=" + m.CustomCategoryID
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
