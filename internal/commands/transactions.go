package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
	"github.com/cleared-dev/cardspend/internal/resolve"
)

func newTransactionsCommand(opts *rootOptions) *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect imported transactions",
	}
	txnCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transactions with their effective category and need/want",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				rows, err := a.Rows(cmd.Context())
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No transactions")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tDATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tNEED/WANT\tOVERRIDES")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.Key, r.Date, r.Description, r.Amount.StringFixed(2),
						r.CategoryName, r.NeedWant.Label(), overrideMarkers(r))
				}
				return tw.Flush()
			})
		},
	})
	return txnCmd
}

func overrideMarkers(r resolve.Row) string {
	var m []string
	if r.HasCategoryOverride {
		m = append(m, "category")
	}
	if r.HasNeedWantOverride {
		m = append(m, "need/want")
	}
	if len(m) == 0 {
		return "-"
	}
	return strings.Join(m, ",")
}
