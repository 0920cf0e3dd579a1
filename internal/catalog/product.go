package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ProductID is the catalog's stable identifier. The upstream API is not
// consistent about encoding it, so both JSON strings and numbers decode.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

type Comment struct {
	Username string `json:"username"`
	Content  string `json:"commentContent"`
	Likes    int    `json:"commentLike"`
	Liked    bool   `json:"isLiked"`
}

type Interactions struct {
	Likes    int       `json:"like"`
	Shares   int       `json:"share"`
	Comments []Comment `json:"comment"`
}

type Product struct {
	ID           ProductID    `json:"id"`
	ArtName      string       `json:"artName"`
	Brand        string       `json:"brand"`
	Price        float64      `json:"price"`
	Deal         float64      `json:"limitedTimeDeal"`
	Image        string       `json:"image"`
	GlassSurface bool         `json:"glassSurface"`
	Description  string       `json:"description"`
	Interact     Interactions `json:"interact"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	if p.Interact.Comments != nil {
		p.Interact.Comments = append([]Comment(nil), p.Interact.Comments...)
	}
	return p
}

// EffectiveDeal is the discount fraction used for pricing. Anything outside
// [0,1) counts as no deal.
func (p Product) EffectiveDeal() float64 {
	if math.IsNaN(p.Deal) || p.Deal < 0 || p.Deal >= 1 {
		return 0
	}
	return p.Deal
}

// FindByID returns the product with the given id.
func FindByID(products []Product, id ProductID) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
