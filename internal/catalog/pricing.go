package catalog

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

type Price struct {
	Original        string `json:"original"`
	Discounted      string `json:"discounted"`
	DiscountPercent int    `json:"discountPercent"`
}

// PriceOf derives the sale price. DiscountPercent is 0 when there is no deal.
func PriceOf(p Product) Price {
	price := decimal.NewFromFloat(p.Price)
	deal := decimal.NewFromFloat(p.EffectiveDeal())

	return Price{
		Original:        price.StringFixed(2),
		Discounted:      price.Mul(one.Sub(deal)).StringFixed(2),
		DiscountPercent: int(deal.Mul(hundred).Round(0).IntPart()),
	}
}
