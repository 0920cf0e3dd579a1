package catalog

import (
	"math"
	"testing"
)

func TestPriceOf(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		deal  float64
		want  Price
	}{
		{name: "quarter off", price: 20, deal: 0.25, want: Price{Original: "20.00", Discounted: "15.00", DiscountPercent: 25}},
		{name: "no deal", price: 12.5, deal: 0, want: Price{Original: "12.50", Discounted: "12.50", DiscountPercent: 0}},
		{name: "rounding", price: 9.99, deal: 0.125, want: Price{Original: "9.99", Discounted: "8.74", DiscountPercent: 13}},
		{name: "deal out of range", price: 10, deal: 1.5, want: Price{Original: "10.00", Discounted: "10.00", DiscountPercent: 0}},
		{name: "negative deal", price: 10, deal: -0.2, want: Price{Original: "10.00", Discounted: "10.00", DiscountPercent: 0}},
		{name: "nan deal", price: 10, deal: math.NaN(), want: Price{Original: "10.00", Discounted: "10.00", DiscountPercent: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PriceOf(Product{Price: tc.price, Deal: tc.deal})
			if got != tc.want {
				t.Fatalf("got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestProduct_Clone(t *testing.T) {
	p := Product{ID: "1", Interact: Interactions{Comments: []Comment{{Content: "a"}}}}
	c := p.Clone()
	c.Interact.Comments[0].Content = "b"

	if p.Interact.Comments[0].Content != "a" {
		t.Fatalf("clone shares comments")
	}
}
