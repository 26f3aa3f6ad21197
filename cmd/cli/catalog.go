package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
)

func newCarsCmd(opts *options) *cobra.Command {
	var (
		category           string
		minPrice, maxPrice float64
		minYear, maxYear   int
		search             string
	)
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "List vehicles, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := models.FilterOptions{Category: models.Category(category), Search: search}
			if category != "" && f.Category != models.CategoryAll && !f.Category.Valid() {
				return fmt.Errorf("unknown category %q", category)
			}
			flags := cmd.Flags()
			if flags.Changed("min-price") {
				f.MinPrice = &minPrice
			}
			if flags.Changed("max-price") {
				f.MaxPrice = &maxPrice
			}
			if flags.Changed("min-year") {
				f.MinYear = &minYear
			}
			if flags.Changed("max-year") {
				f.MaxYear = &maxYear
			}
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				printVehicles(cmd.OutOrStdout(), c.Catalog.Filter(f))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&category, "category", "", "one of "+categoryNames())
	f.Float64Var(&minPrice, "min-price", 0, "lowest price, inclusive")
	f.Float64Var(&maxPrice, "max-price", 0, "highest price, inclusive")
	f.IntVar(&minYear, "min-year", 0, "earliest model year, inclusive")
	f.IntVar(&maxYear, "max-year", 0, "latest model year, inclusive")
	f.StringVarP(&search, "search", "s", "", "text to look for in name, make, model or description")
	return cmd
}

func newCarCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "car <id>",
		Short: "Show one vehicle with its specifications and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				v, ok := c.Catalog.Get(args[0])
				if !ok {
					return catalog.ErrNotFound
				}
				fav, err := c.Catalog.IsFavorite(ctx, v.ID)
				if err != nil {
					return err
				}
				printVehicle(cmd.OutOrStdout(), v, fav)
				return nil
			})
		},
	}
}

func newFeaturedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured vehicles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				printVehicles(cmd.OutOrStdout(), c.Catalog.Featured())
				return nil
			})
		},
	}
}

func newFavoriteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Add or remove a vehicle from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				on, err := c.Catalog.ToggleFavorite(ctx, args[0])
				if err != nil {
					return err
				}
				if on {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", args[0])
				}
				return nil
			})
		},
	}
}

func newFavoritesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite vehicles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				if !c.Auth.IsAuthenticated() {
					return catalog.ErrNotAuthenticated
				}
				favs, err := c.Catalog.Favorites(ctx)
				if err != nil {
					return err
				}
				printVehicles(cmd.OutOrStdout(), favs)
				return nil
			})
		},
	}
}

func newCommentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>...",
		Short: "Comment on a vehicle",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				comment, err := c.Catalog.AddComment(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", comment.Username, comment.Content)
				return nil
			})
		},
	}
}

func newLikeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				v, err := c.Catalog.ToggleLike(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d likes\n", v.Name, v.Likes)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				if !c.Auth.IsAuthenticated() {
					return catalog.ErrNotAuthenticated
				}
				if !c.Auth.IsAdmin() {
					return catalog.ErrNotAuthorized
				}
				printStats(cmd.OutOrStdout(), c.Catalog.Stats(), len(c.Auth.Users()))
				return nil
			})
		},
	}
}

func categoryNames() string {
	names := []string{string(models.CategoryAll)}
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
