// internal/service/session/store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	sessiondom "console-agent/internal/domain/session"
	xerrors "console-agent/internal/pkg/errors"
	"console-agent/internal/pkg/token"
	"console-agent/internal/storage"
)

// Armer is the scheduler surface the store drives: arm on every token set,
// disarm on clear. Wired after construction because the scheduler needs the
// store too.
type Armer interface {
	Arm(expiresAt int64)
	Disarm()
}

// Notifier pushes user-visible events to local UI consumers.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Events emitted by the session layer.
const (
	EventSessionUpdated = "session.updated"
	EventSessionExpired = "session.expired"
)

// Store owns the Session exclusively. Every mutation persists to the shared
// key-value store so a restarted agent resumes where it left off. The
// persisted store is shared across instances and last-write-wins; there is no
// cross-instance locking.
type Store struct {
	mu     sync.RWMutex
	sess   sessiondom.Session
	kv     storage.Store
	armer  Armer
	notify Notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(kv storage.Store, notify Notifier, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		notify: notify,
		logger: logger,
		now:    time.Now,
	}
}

// SetScheduler wires the refresh scheduler in after both sides exist.
func (s *Store) SetScheduler(a Armer) {
	s.mu.Lock()
	s.armer = a
	s.mu.Unlock()
}

// Load restores persisted session state at agent start. A missing key is not
// an error: the agent simply starts logged out. A restored session re-arms
// the scheduler, which fires immediately when the token already expired.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeySessionState)
	if err != nil {
		if xerrors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load session state: %w", err)
	}

	var sess sessiondom.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("discarding unreadable persisted session", zap.Error(err))
		return s.kv.Delete(ctx, storage.KeySessionState, storage.KeyAccessToken)
	}

	s.mu.Lock()
	s.sess = sess
	armer := s.armer
	s.mu.Unlock()

	if sess.LoggedIn && armer != nil {
		armer.Arm(sess.ExpiresAt)
	}
	return nil
}

// SetFromToken decodes the token, overwrites every session field from its
// claims, persists and arms the scheduler. Fails with the decode category
// when the token is not well-formed.
func (s *Store) SetFromToken(ctx context.Context, tokenString string) error {
	claims, err := token.Decode(tokenString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sess = sessiondom.Session{
		Subject:     claims.Subject,
		UserID:      claims.UserID,
		Issuer:      claims.Issuer,
		Audience:    claims.AudienceString(),
		IssuedAt:    claims.IssuedAtUnix(),
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAtUnix(),
		AccessToken: tokenString,
		LoggedIn:    true,
	}
	sess := s.sess
	armer := s.armer
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		return err
	}
	if armer != nil {
		armer.Arm(sess.ExpiresAt)
	}
	s.emitUpdated()
	return nil
}

// UpdateFromToken applies a refresh response. Identical to SetFromToken
// except that subject and user id survive: refresh responses re-assert claims
// without re-asserting identity semantics.
func (s *Store) UpdateFromToken(ctx context.Context, tokenString string) error {
	claims, err := token.Decode(tokenString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	subject, userID := s.sess.Subject, s.sess.UserID
	if subject == "" {
		subject = claims.Subject
	}
	if userID == "" {
		userID = claims.UserID
	}
	s.sess = sessiondom.Session{
		Subject:     subject,
		UserID:      userID,
		Issuer:      claims.Issuer,
		Audience:    claims.AudienceString(),
		IssuedAt:    claims.IssuedAtUnix(),
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAtUnix(),
		AccessToken: tokenString,
		LoggedIn:    true,
	}
	sess := s.sess
	armer := s.armer
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		return err
	}
	if armer != nil {
		armer.Arm(sess.ExpiresAt)
	}
	s.emitUpdated()
	return nil
}

// Clear resets the session, disarms any pending refresh timer and removes the
// persisted keys. Safe to call when already logged out.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.sess = sessiondom.Session{}
	armer := s.armer
	s.mu.Unlock()

	if armer != nil {
		armer.Disarm()
	}

	if err := s.kv.Delete(ctx, storage.KeySessionState, storage.KeyAccessToken); err != nil {
		s.logger.Warn("failed to remove persisted session", zap.Error(err))
	}
	s.emitUpdated()
	return nil
}

// IsAuthenticated reports loggedIn with a non-empty access token.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.LoggedIn && s.sess.AccessToken != ""
}

// IsExpired treats a missing expiry as expired.
func (s *Store) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.ExpiresAt == 0 {
		return true
	}
	return s.now().Unix() >= s.sess.ExpiresAt
}

// TimeUntilExpiry returns the remaining token lifetime, clamped at zero.
func (s *Store) TimeUntilExpiry() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	remaining := s.sess.ExpiresAt - s.now().Unix()
	if remaining < 0 || s.sess.ExpiresAt == 0 {
		return 0
	}
	return time.Duration(remaining) * time.Second
}

// AccessToken satisfies the backend client's token source.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AccessToken
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() sessiondom.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// Status builds the derived view for UI consumers.
func (s *Store) Status() sessiondom.Status {
	sess := s.Snapshot()
	return sessiondom.Status{
		Authenticated:   sess.LoggedIn && sess.AccessToken != "",
		Expired:         sess.ExpiresAt == 0 || s.now().Unix() >= sess.ExpiresAt,
		Subject:         sess.Subject,
		UserID:          sess.UserID,
		Issuer:          sess.Issuer,
		ExpiresAt:       sess.ExpiresAt,
		TimeUntilExpiry: int64(s.TimeUntilExpiry() / time.Second),
	}
}

func (s *Store) persist(ctx context.Context, sess sessiondom.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeySessionState, raw); err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyAccessToken, []byte(sess.AccessToken))
}

func (s *Store) emitUpdated() {
	if s.notify != nil {
		s.notify.Notify(EventSessionUpdated, s.Status())
	}
}
