package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as tab-delimited text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				if output != "" {
					if err := a.ExportFile(cmd.Context(), output); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
					return nil
				}

				text, err := a.Export(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
