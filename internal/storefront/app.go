// Package storefront serves the storefront screens as JSON: the product
// list with search and brand filter, product detail with its live social
// overlay, the favorites collection and the viewer profile.
package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ArtStore/internal/catalog"
	"ArtStore/internal/favorites"
	"ArtStore/internal/interact"
	"ArtStore/internal/viewer"
	"ArtStore/pkg/kit"
)

const (
	readyTimeout = 1 * time.Second
	maxRemoveIDs = 500
)

// Pinger reports whether the storage behind favorites is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Catalog   catalog.Source
	Favorites *favorites.Store
	Board     *interact.Board
	Storage   Pinger

	// Tokens signs session tokens; nil disables POST /session and makes any
	// bearer token invalid.
	Tokens   *viewer.TokenMaker
	TokenTTL time.Duration
	Profile  viewer.Profile

	// CommentLimiter throttles comment posting per client IP when set.
	CommentLimiter *kit.IPRateLimiter

	Log *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Post("/session", s.createSession)

	r.Group(func(vr chi.Router) {
		vr.Use(viewer.Middleware(s.Tokens, s.Profile))

		vr.Get("/profile", s.profile)

		vr.Get("/brands", s.brands)
		vr.Get("/products", s.listProducts)
		vr.Get("/products/{id}", s.productDetail)
		vr.Post("/products/{id}/like", s.toggleLike)
		vr.Post("/products/{id}/share", s.share)
		vr.With(s.commentLimit).Post("/products/{id}/comments", s.addComment)
		vr.Post("/products/{id}/comments/{index}/like", s.toggleCommentLike)

		vr.Get("/favorites", s.listFavorites)
		vr.Post("/favorites/remove", s.removeFavorites)
		vr.Get("/favorites/{id}", s.favoriteStatus)
		vr.Put("/favorites/{id}", s.addFavorite)
		vr.Delete("/favorites/{id}", s.removeFavorite)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Storage == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Storage.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) commentLimit(next http.Handler) http.Handler {
	if s.CommentLimiter == nil {
		return next
	}
	return s.CommentLimiter.Middleware(next)
}

func (s *Server) fetchProducts(w http.ResponseWriter, r *http.Request) ([]catalog.Product, bool) {
	products, err := s.Catalog.FetchAll(r.Context())
	if err != nil {
		s.writeCatalogError(w, r, err)
		return nil, false
	}
	return products, true
}

// product resolves the {id} path parameter against the catalog.
func (s *Server) product(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	id := productID(r)
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", nil)
		return catalog.Product{}, false
	}

	products, ok := s.fetchProducts(w, r)
	if !ok {
		return catalog.Product{}, false
	}

	p, found := catalog.FindByID(products, id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return catalog.Product{}, false
	}
	return p, true
}

func productID(r *http.Request) catalog.ProductID {
	return catalog.ProductID(strings.TrimSpace(chi.URLParam(r, "id")))
}

func currentViewer(r *http.Request) viewer.Profile {
	p, _ := viewer.FromContext(r.Context())
	return p
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, catalog.ErrCatalogBadStatus), errors.Is(err, catalog.ErrCatalogMalformed):
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.logger().Error("catalog fetch failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, ok := s.fetchProducts(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := catalog.Filter{Query: q.Get("q")}
	for _, b := range q["brand"] {
		if b = strings.TrimSpace(b); b != "" {
			f.Brands = append(f.Brands, b)
		}
	}

	items := s.views(catalog.Apply(products, f))
	kit.WriteJSON(w, http.StatusOK, listResp{Items: items, Count: len(items)})
}

func (s *Server) brands(w http.ResponseWriter, r *http.Request) {
	products, ok := s.fetchProducts(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, brandsResp{Brands: catalog.Brands(products)})
}

func (s *Server) productDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, detailView{
		productView:  s.view(p),
		Interactions: s.Board.Summary(p, currentViewer(r).Username),
	})
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Board.ToggleLike(p, currentViewer(r).Username))
}

func (s *Server) share(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Board.Share(p, currentViewer(r).Username))
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, ok := s.product(w, r)
	if !ok {
		return
	}

	c, err := s.Board.AddComment(p, currentViewer(r).Name, req.Content)
	if err != nil {
		s.writeBoardError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) toggleCommentLike(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad index", nil)
		return
	}

	p, ok := s.product(w, r)
	if !ok {
		return
	}

	c, err := s.Board.ToggleCommentLike(p, index)
	if err != nil {
		s.writeBoardError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) writeBoardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interact.ErrEmptyComment):
		kit.WriteError(w, r, http.StatusBadRequest, "content required", nil)
	case errors.Is(err, interact.ErrCommentTooLong):
		kit.WriteError(w, r, http.StatusBadRequest, "content too long", map[string]any{"max_len": interact.MaxCommentRunes})
	case errors.Is(err, interact.ErrNoSuchComment):
		kit.WriteError(w, r, http.StatusNotFound, "no such comment", nil)
	default:
		s.logger().Error("comment update failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	items := s.views(s.Favorites.Recent())
	kit.WriteJSON(w, http.StatusOK, listResp{Items: items, Count: len(items)})
}

func (s *Server) favoriteStatus(w http.ResponseWriter, r *http.Request) {
	id := productID(r)
	kit.WriteJSON(w, http.StatusOK, favoriteResp{ID: id, Favorite: s.Favorites.IsFavorite(id)})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	added := s.Favorites.Add(p)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	kit.WriteJSON(w, status, favoriteResp{ID: p.ID, Favorite: true, Changed: added})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id := productID(r)
	removed := s.Favorites.RemoveOne(id)
	kit.WriteJSON(w, http.StatusOK, favoriteResp{ID: id, Favorite: false, Changed: removed})
}

func (s *Server) removeFavorites(w http.ResponseWriter, r *http.Request) {
	var req removeReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "ids required", nil)
		return
	}
	if len(req.IDs) > maxRemoveIDs {
		kit.WriteError(w, r, http.StatusBadRequest, "too many ids", map[string]any{"max": maxRemoveIDs})
		return
	}

	removed := s.Favorites.RemoveMany(req.IDs)
	kit.WriteJSON(w, http.StatusOK, removeResp{Removed: removed, Count: s.Favorites.Len()})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, profileResp{
		Profile:   currentViewer(r),
		Favorites: s.Favorites.Len(),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	if s.Tokens == nil {
		kit.WriteError(w, r, http.StatusNotImplemented, "sessions disabled", nil)
		return
	}

	var req viewer.Profile
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	p, err := req.Normalize()
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "name/username required", nil)
		return
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tok, err := s.Tokens.New(p, ttl)
	if err != nil {
		s.logger().Error("sign session token failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, sessionResp{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		Profile:     p,
	})
}
