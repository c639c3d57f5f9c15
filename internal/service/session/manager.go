// internal/service/session/manager.go
package session

import (
	"context"

	"go.uber.org/zap"

	"console-agent/internal/client"
	"console-agent/internal/domain/account"
	sessiondom "console-agent/internal/domain/session"
	xerrors "console-agent/internal/pkg/errors"
)

// Manager orchestrates the login, registration and logout flows around the
// credential store.
type Manager struct {
	backend *client.Backend
	store   *Store
	logger  *zap.Logger
}

func NewManager(backend *client.Backend, store *Store, logger *zap.Logger) *Manager {
	return &Manager{backend: backend, store: store, logger: logger}
}

// Login authenticates against the backend and seeds the session from the
// returned token, which also arms the refresh scheduler.
func (m *Manager) Login(ctx context.Context, req sessiondom.LoginRequest) (*account.Profile, error) {
	res, err := m.backend.Login(ctx, req)
	if err != nil {
		m.logger.Warn("login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	if err := m.store.SetFromToken(ctx, res.AccessToken); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Register creates the account and logs straight in, matching the backend's
// register-returns-token contract.
func (m *Manager) Register(ctx context.Context, req sessiondom.RegisterRequest) (*account.Profile, error) {
	res, err := m.backend.Register(ctx, req)
	if err != nil {
		m.logger.Warn("registration failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	if err := m.store.SetFromToken(ctx, res.AccessToken); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout tells the backend best-effort, then clears local state regardless.
// A dead backend must never trap the user in a logged-in agent.
func (m *Manager) Logout(ctx context.Context) error {
	if m.store.IsAuthenticated() {
		if err := m.backend.Logout(ctx); err != nil && !xerrors.Is(err, xerrors.ErrAuth) {
			m.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	return m.store.Clear(ctx)
}
