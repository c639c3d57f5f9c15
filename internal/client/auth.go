// internal/client/auth.go
package client

import (
	"context"
	"net/http"

	"console-agent/internal/domain/account"
	"console-agent/internal/domain/session"
	"console-agent/internal/pkg/fingerprint"
)

// LoginResult is the backend payload for login/register. The refresh token is
// not part of the body; it arrives as an http-only cookie captured by the jar.
type LoginResult struct {
	AccessToken string          `json:"access_token"`
	User        account.Profile `json:"user"`
}

func (b *Backend) Login(ctx context.Context, req session.LoginRequest) (*LoginResult, error) {
	var res LoginResult
	if err := b.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *Backend) Register(ctx context.Context, req session.RegisterRequest) (*LoginResult, error) {
	var res LoginResult
	if err := b.do(ctx, http.MethodPost, "/api/v1/auth/register", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *Backend) Logout(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/api/v1/auth/logout", struct{}{}, nil)
}

// refreshRequest carries the freshly computed fingerprint as the anti-replay
// signal. The refresh token itself rides the cookie jar.
type refreshRequest struct {
	DeviceFingerprint fingerprint.Fingerprint `json:"device_fingerprint"`
	FingerprintHash   string                  `json:"fingerprint_hash"`
	ShortHash         string                  `json:"short_hash"`
}

type refreshResult struct {
	AccessToken string `json:"access_token"`
}

// RefreshToken exchanges the refresh cookie for a new access token.
func (b *Backend) RefreshToken(ctx context.Context, fp fingerprint.Fingerprint) (string, error) {
	digest := fingerprint.Hash(fp)
	req := refreshRequest{
		DeviceFingerprint: fp,
		FingerprintHash:   digest.Hash,
		ShortHash:         digest.ShortHash,
	}

	var res refreshResult
	if err := b.do(ctx, http.MethodPost, "/api/v1/auth/refresh", req, &res); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

func (b *Backend) GetProfile(ctx context.Context) (*account.Profile, error) {
	var p account.Profile
	if err := b.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (b *Backend) UpdateProfile(ctx context.Context, req account.UpdateProfileRequest) (*account.Profile, error) {
	var p account.Profile
	if err := b.do(ctx, http.MethodPut, "/api/v1/profile", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
