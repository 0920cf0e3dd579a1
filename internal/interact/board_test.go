package interact

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ArtStore/internal/catalog"
)

func seeded() catalog.Product {
	return catalog.Product{
		ID:      "7",
		ArtName: "Red",
		Interact: catalog.Interactions{
			Likes:  3,
			Shares: 1,
			Comments: []catalog.Comment{
				{Username: "Lan", Content: "nice", Likes: 2, Liked: false},
				{Username: "Minh", Content: "bright", Likes: 1, Liked: true},
			},
		},
	}
}

func TestBoard_SummarySeedsFromCatalog(t *testing.T) {
	b := NewBoard()
	o := b.Summary(seeded(), "MTP")

	if o.Likes != 3 || o.Shares != 1 || o.Liked {
		t.Fatalf("overlay=%+v want likes=3 shares=1 liked=false", o)
	}
	if len(o.Comments) != 2 || o.Comments[1].Content != "bright" || !o.Comments[1].Liked {
		t.Fatalf("comments=%+v", o.Comments)
	}
	if o.Comments[0].ID == "" || o.Comments[0].ID == o.Comments[1].ID {
		t.Fatalf("seeded comments need distinct ids: %+v", o.Comments)
	}

	// later catalog values do not reseed
	p := seeded()
	p.Interact.Likes = 100
	if o := b.Summary(p, "MTP"); o.Likes != 3 {
		t.Fatalf("likes=%d want=3", o.Likes)
	}
}

func TestBoard_ToggleLike(t *testing.T) {
	b := NewBoard()
	p := seeded()

	o := b.ToggleLike(p, "MTP")
	if o.Likes != 4 || !o.Liked {
		t.Fatalf("after like=%+v want likes=4 liked", o)
	}

	if o := b.Summary(p, "other"); o.Liked || o.Likes != 4 {
		t.Fatalf("other viewer=%+v want likes=4 not liked", o)
	}

	o = b.ToggleLike(p, "MTP")
	if o.Likes != 3 || o.Liked {
		t.Fatalf("after unlike=%+v want likes=3 not liked", o)
	}
}

func TestBoard_ToggleLikeNeverNegative(t *testing.T) {
	b := NewBoard()
	p := catalog.Product{ID: "1", Interact: catalog.Interactions{Likes: -4}}

	if o := b.ToggleLike(p, "a"); o.Likes != 1 {
		t.Fatalf("likes=%d want=1", o.Likes)
	}
	if o := b.ToggleLike(p, "a"); o.Likes != 0 {
		t.Fatalf("likes=%d want=0", o.Likes)
	}
}

func TestBoard_Share(t *testing.T) {
	b := NewBoard()
	p := seeded()

	b.Share(p, "MTP")
	if o := b.Share(p, "MTP"); o.Shares != 3 {
		t.Fatalf("shares=%d want=3", o.Shares)
	}
}

func TestBoard_AddComment(t *testing.T) {
	b := NewBoard()
	at := time.Date(2024, 9, 26, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return at }
	p := seeded()

	c, err := b.AddComment(p, "Mai Tấn Phúc", "  lovely colours \n")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c.Content != "lovely colours" || c.Username != "Mai Tấn Phúc" || c.Likes != 0 || c.Liked {
		t.Fatalf("comment=%+v", c)
	}
	if c.CreatedAt == nil || !c.CreatedAt.Equal(at) {
		t.Fatalf("createdAt=%v want=%v", c.CreatedAt, at)
	}

	o := b.Summary(p, "MTP")
	if len(o.Comments) != 3 || o.Comments[2].ID != c.ID {
		t.Fatalf("comments=%+v", o.Comments)
	}
}

func TestBoard_AddCommentRejects(t *testing.T) {
	b := NewBoard()
	p := seeded()

	cases := []struct {
		body string
		want error
	}{
		{"", ErrEmptyComment},
		{"   \t\n", ErrEmptyComment},
		{strings.Repeat("á", MaxCommentRunes+1), ErrCommentTooLong},
	}
	for _, tc := range cases {
		if _, err := b.AddComment(p, "MTP", tc.body); !errors.Is(err, tc.want) {
			t.Fatalf("body len %d: err=%v want=%v", len(tc.body), err, tc.want)
		}
	}

	if _, err := b.AddComment(p, "MTP", strings.Repeat("á", MaxCommentRunes)); err != nil {
		t.Fatalf("comment at the limit: %v", err)
	}
	if o := b.Summary(p, "MTP"); len(o.Comments) != 3 {
		t.Fatalf("comments=%d want=3", len(o.Comments))
	}
}

func TestBoard_ToggleCommentLike(t *testing.T) {
	b := NewBoard()
	p := seeded()

	c, err := b.ToggleCommentLike(p, 0)
	if err != nil || !c.Liked || c.Likes != 3 {
		t.Fatalf("comment=%+v err=%v want liked with 3", c, err)
	}
	c, err = b.ToggleCommentLike(p, 1)
	if err != nil || c.Liked || c.Likes != 0 {
		t.Fatalf("comment=%+v err=%v want unliked with 0", c, err)
	}

	for _, idx := range []int{-1, 2, 99} {
		if _, err := b.ToggleCommentLike(p, idx); !errors.Is(err, ErrNoSuchComment) {
			t.Fatalf("index %d: err=%v want=%v", idx, err, ErrNoSuchComment)
		}
	}
}

func TestBoard_SummaryIsACopy(t *testing.T) {
	b := NewBoard()
	p := seeded()

	o := b.Summary(p, "MTP")
	o.Comments[0].Content = "changed"

	if got := b.Summary(p, "MTP").Comments[0].Content; got != "nice" {
		t.Fatalf("content=%q want=nice", got)
	}
}

func TestBoard_ProductsAreIndependent(t *testing.T) {
	b := NewBoard()
	a := catalog.Product{ID: "a"}
	c := catalog.Product{ID: "c"}

	b.ToggleLike(a, "v")
	if o := b.Summary(c, "v"); o.Likes != 0 || o.Liked {
		t.Fatalf("overlay leaked across products: %+v", o)
	}
}

func TestBoard_ConcurrentLikes(t *testing.T) {
	b := NewBoard()
	p := catalog.Product{ID: "1"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.ToggleLike(p, string(rune('A'+i)))
			b.Share(p, "x")
		}(i)
	}
	wg.Wait()

	o := b.Summary(p, "x")
	if o.Likes != 50 || o.Shares != 50 {
		t.Fatalf("likes=%d shares=%d want 50/50", o.Likes, o.Shares)
	}
}
