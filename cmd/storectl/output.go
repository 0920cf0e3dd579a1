package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"ArtStore/internal/catalog"
)

type productRow struct {
	catalog.Product
	Pricing  catalog.Price `json:"pricing"`
	Favorite bool          `json:"favorite"`
}

func rows(products []catalog.Product, isFavorite func(catalog.ProductID) bool) []productRow {
	out := make([]productRow, 0, len(products))
	for _, p := range products {
		out = append(out, productRow{
			Product:  p,
			Pricing:  catalog.PriceOf(p),
			Favorite: isFavorite != nil && isFavorite(p.ID),
		})
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, rs []productRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tDEAL\tFAV")
	for _, r := range rs {
		deal := "-"
		if r.Pricing.DiscountPercent > 0 {
			deal = fmt.Sprintf("%d%%", r.Pricing.DiscountPercent)
		}
		fav := ""
		if r.Favorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.ArtName, r.Brand, r.Pricing.Discounted, deal, fav)
	}
	return tw.Flush()
}

func (e *rootEnv) printProducts(w io.Writer, rs []productRow) error {
	if e.jsonOut {
		return printJSON(w, rs)
	}
	if len(rs) == 0 {
		_, err := fmt.Fprintln(w, "no products")
		return err
	}
	return printTable(w, rs)
}
