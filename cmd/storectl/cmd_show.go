package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ArtStore/internal/catalog"
	"ArtStore/internal/favorites"
)

// getShowCmd returns the definition of the show command.
func getShowCmd(root *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product in detail.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := catalog.ProductID(args[0])

			products, err := root.fetch(ctx)
			if err != nil {
				return err
			}
			p, ok := catalog.FindByID(products, id)
			if !ok {
				return fmt.Errorf("product %s not found", id)
			}

			return root.withFavorites(ctx, func(favs *favorites.Store) error {
				row := rows([]catalog.Product{p}, favs.IsFavorite)[0]
				if root.jsonOut {
					return printJSON(cmd.OutOrStdout(), row)
				}
				return printDetail(cmd.OutOrStdout(), row)
			})
		},
	}
}

func printDetail(w io.Writer, r productRow) error {
	fmt.Fprintf(w, "%s (%s)\n", r.ArtName, r.Brand)
	fmt.Fprintf(w, "id:       %s\n", r.ID)
	if r.Pricing.DiscountPercent > 0 {
		fmt.Fprintf(w, "price:    %s (was %s, -%d%%)\n", r.Pricing.Discounted, r.Pricing.Original, r.Pricing.DiscountPercent)
	} else {
		fmt.Fprintf(w, "price:    %s\n", r.Pricing.Original)
	}
	if r.GlassSurface {
		fmt.Fprintln(w, "surface:  glass")
	}
	fmt.Fprintf(w, "favorite: %t\n", r.Favorite)
	fmt.Fprintf(w, "likes:    %d  shares: %d  comments: %d\n", r.Interact.Likes, r.Interact.Shares, len(r.Interact.Comments))
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", r.Description)
	}
	for _, c := range r.Interact.Comments {
		fmt.Fprintf(w, "  %s: %s (%d)\n", c.Username, c.Content, c.Likes)
	}
	return nil
}
