package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendwise-dev/spendwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:     "spendwise",
		Short:   "Personal finance statement import and budgeting",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newSeedCommand(&dir),
		newServeCommand(&dir),
		newImportCommand(&dir),
	)

	return rootCmd
}
