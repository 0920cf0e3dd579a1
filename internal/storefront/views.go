package storefront

import (
	"ArtStore/internal/catalog"
	"ArtStore/internal/interact"
	"ArtStore/internal/viewer"
)

type productView struct {
	catalog.Product
	Pricing  catalog.Price `json:"pricing"`
	Favorite bool          `json:"favorite"`
}

// detailView adds the live overlay. The embedded interact field keeps the
// catalog's own summary untouched.
type detailView struct {
	productView
	Interactions interact.Overlay `json:"interactions"`
}

type listResp struct {
	Items []productView `json:"items"`
	Count int           `json:"count"`
}

type brandsResp struct {
	Brands []string `json:"brands"`
}

type favoriteResp struct {
	ID       catalog.ProductID `json:"id"`
	Favorite bool              `json:"favorite"`
	Changed  bool              `json:"changed"`
}

type removeReq struct {
	IDs []catalog.ProductID `json:"ids"`
}

type removeResp struct {
	Removed int `json:"removed"`
	Count   int `json:"count"`
}

type commentReq struct {
	Content string `json:"content"`
}

type profileResp struct {
	Profile   viewer.Profile `json:"profile"`
	Favorites int            `json:"favorites"`
}

type sessionResp struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	Profile     viewer.Profile `json:"profile"`
}

func (s *Server) view(p catalog.Product) productView {
	return productView{
		Product:  p,
		Pricing:  catalog.PriceOf(p),
		Favorite: s.Favorites.IsFavorite(p.ID),
	}
}

func (s *Server) views(products []catalog.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, s.view(p))
	}
	return out
}
