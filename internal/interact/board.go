// Package interact keeps the per-product social overlay: likes, shares and
// comments made while the process runs. The catalog's interact summary
// seeds a product's state on first touch; nothing here is persisted.
package interact

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ArtStore/internal/catalog"
)

var (
	ErrEmptyComment   = errors.New("comment is empty")
	ErrCommentTooLong = errors.New("comment too long")
	ErrNoSuchComment  = errors.New("no such comment")
)

const MaxCommentRunes = 500

type Comment struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Content   string     `json:"commentContent"`
	Likes     int        `json:"commentLike"`
	Liked     bool       `json:"isLiked"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Overlay is what a viewer sees for one product.
type Overlay struct {
	Likes    int       `json:"like"`
	Liked    bool      `json:"isLiked"`
	Shares   int       `json:"share"`
	Comments []Comment `json:"comment"`
}

type state struct {
	likes    int
	likedBy  map[string]struct{}
	shares   int
	comments []Comment
}

type Board struct {
	mu     sync.Mutex
	states map[catalog.ProductID]*state
	now    func() time.Time
}

func NewBoard() *Board {
	return &Board{
		states: map[catalog.ProductID]*state{},
		now:    time.Now,
	}
}

// stateLocked returns the product's state, seeding it from the catalog
// summary the first time the product is touched.
func (b *Board) stateLocked(p catalog.Product) *state {
	if st, ok := b.states[p.ID]; ok {
		return st
	}

	st := &state{
		likes:    max(p.Interact.Likes, 0),
		likedBy:  map[string]struct{}{},
		shares:   max(p.Interact.Shares, 0),
		comments: make([]Comment, 0, len(p.Interact.Comments)),
	}
	for _, c := range p.Interact.Comments {
		st.comments = append(st.comments, Comment{
			ID:       uuid.NewString(),
			Username: c.Username,
			Content:  c.Content,
			Likes:    max(c.Likes, 0),
			Liked:    c.Liked,
		})
	}
	b.states[p.ID] = st
	return st
}

func (st *state) overlay(viewer string) Overlay {
	_, liked := st.likedBy[viewer]
	return Overlay{
		Likes:    st.likes,
		Liked:    liked,
		Shares:   st.shares,
		Comments: append([]Comment{}, st.comments...),
	}
}

// Summary returns the current overlay of p as seen by viewer.
func (b *Board) Summary(p catalog.Product, viewer string) Overlay {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(p).overlay(viewer)
}

// ToggleLike likes p for viewer, or takes the like back if viewer already
// liked it.
func (b *Board) ToggleLike(p catalog.Product, viewer string) Overlay {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(p)
	if _, ok := st.likedBy[viewer]; ok {
		delete(st.likedBy, viewer)
		st.likes = max(st.likes-1, 0)
	} else {
		st.likedBy[viewer] = struct{}{}
		st.likes++
	}
	return st.overlay(viewer)
}

func (b *Board) Share(p catalog.Product, viewer string) Overlay {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(p)
	st.shares++
	return st.overlay(viewer)
}

// AddComment appends a comment by author. The body is trimmed and must not
// be empty.
func (b *Board) AddComment(p catalog.Product, author, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, ErrEmptyComment
	}
	if utf8.RuneCountInString(body) > MaxCommentRunes {
		return Comment{}, ErrCommentTooLong
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	at := b.now().UTC()
	c := Comment{
		ID:        uuid.NewString(),
		Username:  author,
		Content:   body,
		CreatedAt: &at,
	}
	st := b.stateLocked(p)
	st.comments = append(st.comments, c)
	return c, nil
}

// ToggleCommentLike flips the liked flag of the comment at index and moves
// its count by one in the same direction.
func (b *Board) ToggleCommentLike(p catalog.Product, index int) (Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(p)
	if index < 0 || index >= len(st.comments) {
		return Comment{}, ErrNoSuchComment
	}

	c := &st.comments[index]
	if c.Liked {
		c.Liked = false
		c.Likes = max(c.Likes-1, 0)
	} else {
		c.Liked = true
		c.Likes++
	}
	return *c, nil
}
