package viewer

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("token secret is empty")
)

const issuer = "artstore-storefront"

type TokenMaker struct {
	secret []byte
	now    func() time.Time
}

func NewTokenMaker(secret string) (*TokenMaker, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenMaker{secret: []byte(secret), now: time.Now}, nil
}

type Claims struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c Claims) Profile() Profile {
	return Profile{Name: c.Name, Username: c.Username}
}

// New signs a session token for p. Each token gets its own id.
func (t *TokenMaker) New(p Profile, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		Name:     p.Name,
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.Username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if c.Username == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
