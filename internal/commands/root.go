package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardspend/internal/app"
	"github.com/cleared-dev/cardspend/internal/buildinfo"
)

type rootOptions struct {
	dataDir string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "cardspend",
		Short:   "Track credit card spending as needs and wants",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", ".", "data directory")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newCardCommand(opts),
		newCategoryCommand(opts),
		newImportCommand(opts),
		newTransactionsCommand(opts),
		newOverrideCommand(opts),
		newExportCommand(opts),
		newResetCommand(opts),
	)

	return rootCmd
}

// withApp opens the data directory, runs fn and closes the session. The
// session is closed even when fn fails so earlier changes are not lost.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	dir, err := filepath.Abs(o.dataDir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	a, err := app.Open(cmd.Context(), dir, nil)
	if err != nil {
		return err
	}

	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
