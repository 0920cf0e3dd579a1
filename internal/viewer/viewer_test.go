package viewer

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newMaker(t *testing.T) *TokenMaker {
	t.Helper()
	tm, err := NewTokenMaker("test-secret")
	if err != nil {
		t.Fatalf("token maker: %v", err)
	}
	return tm
}

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := newMaker(t)
	p := Profile{Name: "Lan Anh", Username: "lan"}

	tok, err := tm.New(p, time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Profile() != p {
		t.Fatalf("profile=%+v want=%+v", claims.Profile(), p)
	}
	if claims.ID == "" || claims.Subject != "lan" {
		t.Fatalf("claims id=%q sub=%q", claims.ID, claims.Subject)
	}
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := newMaker(t)
	p := Default()

	expired := newMaker(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.New(p, time.Hour)

	other, _ := NewTokenMaker("another-secret")
	foreign, _ := other.New(p, time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "x"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	valid, _ := tm.New(p, time.Hour)

	cases := map[string]string{
		"garbage":   "not.a.token",
		"expired":   old,
		"wrong key": foreign,
		"alg none":  unsigned,
		"tampered":  valid + "x",
	}
	for name, tok := range cases {
		if _, err := tm.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err=%v want=%v", name, err, ErrInvalidToken)
		}
	}
}

func TestNewTokenMaker_EmptySecret(t *testing.T) {
	if _, err := NewTokenMaker(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("err=%v want=%v", err, ErrEmptySecret)
	}
}

func TestProfile_Normalize(t *testing.T) {
	p, err := Profile{Name: "  Mai  ", Username: " mtp "}.Normalize()
	if err != nil || p.Name != "Mai" || p.Username != "mtp" {
		t.Fatalf("profile=%+v err=%v", p, err)
	}

	bad := []Profile{
		{Name: "", Username: "u"},
		{Name: "n", Username: "   "},
		{Name: strings.Repeat("n", maxFieldRunes+1), Username: "u"},
	}
	for _, b := range bad {
		if _, err := b.Normalize(); !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("profile=%+v err=%v want=%v", b, err, ErrInvalidProfile)
		}
	}
}

func TestMiddleware(t *testing.T) {
	tm := newMaker(t)
	tok, _ := tm.New(Profile{Name: "Lan", Username: "lan"}, time.Hour)

	h := Middleware(tm, Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			t.Errorf("no profile in context")
		}
		_, _ = w.Write([]byte(p.Username))
	}))

	cases := []struct {
		name   string
		authz  string
		status int
		body   string
	}{
		{name: "anonymous", status: http.StatusOK, body: DefaultUsername},
		{name: "token", authz: "Bearer " + tok, status: http.StatusOK, body: "lan"},
		{name: "bad token", authz: "Bearer nope", status: http.StatusUnauthorized},
		{name: "not bearer", authz: "Basic abc", status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.authz != "" {
				req.Header.Set("Authorization", tc.authz)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status=%d want=%d", rec.Code, tc.status)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body=%q want=%q", rec.Body.String(), tc.body)
			}
		})
	}
}
