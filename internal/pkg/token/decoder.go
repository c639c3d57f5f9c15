// internal/pkg/token/decoder.go
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	xerrors "console-agent/internal/pkg/errors"
)

// Decode structurally parses a JWT and returns its claims WITHOUT verifying
// the signature. Verification is the backend's responsibility; the agent only
// needs the expiry and identity claims to schedule refreshes and populate the
// session. The result is informational and must never be used as a security
// control.
//
// Malformed input fails with xerrors.ErrDecode so callers can branch on the
// category rather than the message.
func Decode(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", xerrors.ErrDecode)
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrDecode, err)
	}

	return claims, nil
}
