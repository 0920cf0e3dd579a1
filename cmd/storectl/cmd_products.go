package main

import (
	"github.com/spf13/cobra"

	"ArtStore/internal/catalog"
	"ArtStore/internal/favorites"
)

type productsEnv struct {
	*rootEnv
	query  string
	brands []string
}

// getProductsCmd returns the definition of the products command.
func getProductsCmd(root *rootEnv) *cobra.Command {
	env := &productsEnv{rootEnv: root}
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products, optionally filtered by name and brand.",
		Args:  cobra.NoArgs,
		RunE:  env.runProductsCmd,
	}

	cmd.Flags().StringVarP(&env.query, "query", "q", "", "Case-insensitive substring of the product name")
	cmd.Flags().StringSliceVar(&env.brands, "brand", nil, "Only these brands (repeatable)")
	return cmd
}

func (p *productsEnv) runProductsCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	products, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	matched := catalog.Apply(products, catalog.Filter{Query: p.query, Brands: p.brands})

	return p.withFavorites(ctx, func(favs *favorites.Store) error {
		return p.printProducts(cmd.OutOrStdout(), rows(matched, favs.IsFavorite))
	})
}
