// internal/pkg/token/claims.go
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the token claims the agent cares about. Subject carries
// the username; UserID is the backend's numeric-or-opaque user identifier.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Audience returns the first audience entry, or "" when the claim is absent.
// The backend issues single-audience tokens.
func (c *Claims) AudienceString() string {
	if len(c.RegisteredClaims.Audience) == 0 {
		return ""
	}
	return c.RegisteredClaims.Audience[0]
}

// IssuedAtUnix returns the iat claim as epoch seconds, 0 when absent.
func (c *Claims) IssuedAtUnix() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// ExpiresAtUnix returns the exp claim as epoch seconds, 0 when absent.
func (c *Claims) ExpiresAtUnix() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}
