// internal/client/backend.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"

	xerrors "console-agent/internal/pkg/errors"
)

// TokenSource yields the current access token, "" when logged out. Injected
// by the credential store so the client never owns session state.
type TokenSource func() string

// Backend is the typed wrapper around the admin backend REST API. The refresh
// token is never seen by this process: the backend delivers it as an http-only
// cookie which the jar replays on refresh calls.
type Backend struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  *zap.Logger
}

func NewBackend(baseURL string, token TokenSource, logger *zap.Logger) (*Backend, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Backend{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		token:  token,
		logger: logger,
	}, nil
}

// envelope matches the backend's standard response format.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// do issues one request and maps the outcome onto the failure taxonomy:
// transport failure -> ErrNetwork, 401 -> ErrAuth, 429 -> ErrRateLimit,
// 400/422 -> ErrValidation, 5xx -> ErrServer. Raw backend errors never leak
// past this boundary.
func (b *Backend) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := b.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", xerrors.ErrNetwork, err)
	}

	if kindErr := xerrors.FromStatus(resp.StatusCode); kindErr != nil {
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			b.logger.Debug("backend request rejected",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("message", env.Message),
			)
			return fmt.Errorf("%w: %s", kindErr, env.Message)
		}
		return kindErr
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decoding response: %v", xerrors.ErrServer, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decoding payload: %v", xerrors.ErrServer, err)
	}
	return nil
}
