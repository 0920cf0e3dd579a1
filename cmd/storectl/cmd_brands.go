package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArtStore/internal/catalog"
)

func getBrandsCmd(root *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List the distinct brands in the catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := root.fetch(cmd.Context())
			if err != nil {
				return err
			}

			brands := catalog.Brands(products)
			if root.jsonOut {
				return printJSON(cmd.OutOrStdout(), brands)
			}
			for _, b := range brands {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}
