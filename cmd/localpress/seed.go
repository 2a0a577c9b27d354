package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localpress/localpress/internal/app"
	"github.com/localpress/localpress/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load CMS objects from a YAML file into the SQL backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := database.LoadSeedFile(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if a.Store == nil {
				return errors.New("seeding needs the postgres or sqlite CMS backend")
			}
			n, err := seed.Apply(ctx, a.Store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d objects from %s\n", n, args[0])
			return nil
		})
	},
}
