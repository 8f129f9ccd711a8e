package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spendwise-dev/spendwise/internal/categories"
)

func newSeedCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create or reconcile the category taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *dir)
		},
	}
}

func runSeed(ctx context.Context, out, logOut io.Writer, dir string) error {
	p, err := openProject(dir, logOut)
	if err != nil {
		return err
	}
	st, closeDB, err := p.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	seeds, err := categories.LoadSeeds(p.dir)
	if err != nil {
		return err
	}
	res, err := categories.Bootstrap(ctx, st, seeds)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Seeded %d categories: %d created, %d updated\n", len(seeds), res.Created, res.Updated)
	return nil
}
