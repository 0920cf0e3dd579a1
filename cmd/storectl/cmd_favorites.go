package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArtStore/internal/catalog"
	"ArtStore/internal/favorites"
)

// getFavoritesCmd returns the favorites command group.
func getFavoritesCmd(root *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List, add and remove favorite products.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorites, newest first.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return root.withFavorites(cmd.Context(), func(favs *favorites.Store) error {
					return root.printProducts(cmd.OutOrStdout(), rows(favs.Recent(), favs.IsFavorite))
				})
			},
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Copy a catalog product into favorites.",
			Args:  cobra.ExactArgs(1),
			RunE:  root.runFavoritesAdd,
		},
		&cobra.Command{
			Use:   "remove <id>...",
			Short: "Remove one or more favorites by id.",
			Args:  cobra.MinimumNArgs(1),
			RunE:  root.runFavoritesRemove,
		},
	)
	return cmd
}

func (e *rootEnv) runFavoritesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := catalog.ProductID(args[0])

	products, err := e.fetch(ctx)
	if err != nil {
		return err
	}
	p, ok := catalog.FindByID(products, id)
	if !ok {
		return fmt.Errorf("product %s not found", id)
	}

	return e.withFavorites(ctx, func(favs *favorites.Store) error {
		if favs.Add(p) {
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", p.ID, p.ArtName)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", p.ID)
		}
		return nil
	})
}

func (e *rootEnv) runFavoritesRemove(cmd *cobra.Command, args []string) error {
	ids := make([]catalog.ProductID, 0, len(args))
	for _, a := range args {
		ids = append(ids, catalog.ProductID(a))
	}

	return e.withFavorites(cmd.Context(), func(favs *favorites.Store) error {
		var removed int
		if len(ids) == 1 {
			if favs.RemoveOne(ids[0]) {
				removed = 1
			}
		} else {
			removed = favs.RemoveMany(ids)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d, %d left\n", removed, favs.Len())
		return nil
	})
}
