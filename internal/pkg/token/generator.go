// internal/pkg/token/generator.go
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Generator issues HS256-signed tokens. Only the development stub backend
// signs tokens; the agent itself never does.
type Generator struct {
	secret   []byte
	issuer   string
	audience string
	TTL      time.Duration
}

func NewGenerator(secret []byte, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		TTL:      ttl,
	}
}

// Generate creates a signed access token for the given user. Returns the
// signed token and its jti.
func (g *Generator) Generate(username, userID string, ttl time.Duration) (string, string, error) {
	if len(g.secret) == 0 {
		return "", "", fmt.Errorf("token generator has empty secret")
	}
	if ttl <= 0 {
		ttl = g.TTL
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   username,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(g.secret)
	return signed, jti, err
}

// Verify parses and verifies a token the generator itself issued. Used by the
// stub backend to validate refresh cookies.
func (g *Generator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
