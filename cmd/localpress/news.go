package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/localpress/localpress/internal/app"
	"github.com/localpress/localpress/internal/models"
)

var newsCmd = &cobra.Command{
	Use:   "news <zip>",
	Short: "Print aggregated news for a zip code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zip := strings.TrimSpace(args[0])
		if !models.IsValidZipCode(zip) {
			return fmt.Errorf("invalid zip code %q", args[0])
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			area, err := a.Aggregator.ResolveArea(ctx, zip)
			if err != nil {
				return err
			}
			if area == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not covered yet.\n", zip)
				return nil
			}

			articles, err := a.Aggregator.GetArticlesForArea(ctx, *area)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d articles)\n\n", area.LocationName(), len(articles))
			fmt.Fprint(cmd.OutOrStdout(), renderArticles(articles))
			return nil
		})
	},
}

var searchZip string

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search newsroom and external articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.TrimSpace(strings.Join(args, " "))
		zip := strings.TrimSpace(searchZip)
		if zip != "" {
			if !models.IsValidZipCode(zip) {
				return fmt.Errorf("invalid zip code %q", searchZip)
			}
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			articles, err := a.Aggregator.SearchArticles(ctx, keyword, zip)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d results for %q\n\n", len(articles), keyword)
			fmt.Fprint(cmd.OutOrStdout(), renderArticles(articles))
			return nil
		})
	},
}

var areaCmd = &cobra.Command{
	Use:   "area [zip]",
	Short: "Show the coverage area for a zip code, or list all active areas",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			var areas []models.CoverageArea
			if len(args) == 1 {
				zip := strings.TrimSpace(args[0])
				if !models.IsValidZipCode(zip) {
					return fmt.Errorf("invalid zip code %q", args[0])
				}
				area, err := a.Aggregator.ResolveArea(ctx, zip)
				if err != nil {
					return err
				}
				if area == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not covered yet.\n", zip)
					return nil
				}
				areas = append(areas, *area)
			} else {
				var err error
				if areas, err = a.Areas.ListActive(ctx); err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), renderAreas(areas))
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchZip, "zip", "", "narrow newsroom results to a zip code")
}
