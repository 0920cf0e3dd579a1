package catalog

import "strings"

// Filter is the search box plus the brand checkboxes. Both conditions must
// hold; an empty Query or empty Brands matches everything. Query is matched
// as typed, surrounding spaces included.
type Filter struct {
	Query  string
	Brands []string
}

func (f Filter) Match(p Product) bool {
	if f.Query != "" {
		if !strings.Contains(strings.ToLower(p.ArtName), strings.ToLower(f.Query)) {
			return false
		}
	}
	if len(f.Brands) == 0 {
		return true
	}
	for _, b := range f.Brands {
		if b == p.Brand {
			return true
		}
	}
	return false
}

func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func ByBrand(products []Product, brand string) []Product {
	return Apply(products, Filter{Brands: []string{brand}})
}

// Brands lists distinct brands in the order they first appear.
func Brands(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	return out
}
