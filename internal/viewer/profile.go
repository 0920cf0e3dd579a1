// Package viewer identifies who is looking at the storefront. There are no
// accounts: a viewer is a display name and a username, either the
// configured default or one carried in a signed session token.
package viewer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"ArtStore/pkg/kit"
)

var ErrInvalidProfile = errors.New("invalid profile")

const (
	DefaultName     = "Mai Tấn Phúc"
	DefaultUsername = "MTP"

	maxFieldRunes = 64
)

type Profile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

func Default() Profile {
	return Profile{Name: DefaultName, Username: DefaultUsername}
}

// Normalize trims both fields and checks they are present and short.
func (p Profile) Normalize() (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Username = strings.TrimSpace(p.Username)

	if p.Name == "" || p.Username == "" {
		return Profile{}, ErrInvalidProfile
	}
	if utf8.RuneCountInString(p.Name) > maxFieldRunes || utf8.RuneCountInString(p.Username) > maxFieldRunes {
		return Profile{}, ErrInvalidProfile
	}
	return p, nil
}

type ctxKey string

const profileKey ctxKey = "viewer"

func WithProfile(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func FromContext(ctx context.Context) (Profile, bool) {
	p, ok := ctx.Value(profileKey).(Profile)
	return p, ok
}

// Middleware resolves the viewer for every request. No Authorization header
// means the fallback profile; a token that does not verify is rejected.
func Middleware(tokens *TokenMaker, fallback Profile) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := fallback

			if r.Header.Get("Authorization") != "" {
				tok, ok := kit.BearerToken(r)
				if !ok || tokens == nil {
					kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
					return
				}
				claims, err := tokens.Parse(tok)
				if err != nil {
					kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
					return
				}
				p = claims.Profile()
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
		})
	}
}
