// internal/service/session/scheduler.go
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	xerrors "console-agent/internal/pkg/errors"
	"console-agent/internal/pkg/fingerprint"
)

// Refresher is the backend surface the scheduler fires against.
type Refresher interface {
	RefreshToken(ctx context.Context, fp fingerprint.Fingerprint) (string, error)
}

// MarginSource yields how long before expiry the refresh should trigger.
// Backed by the settings cache with a hardcoded fallback.
type MarginSource func() time.Duration

// SchedulerConfig carries the retry policy. Retries use a fixed delay, not
// exponential backoff.
type SchedulerConfig struct {
	DefaultMargin time.Duration
	RetryDelay    time.Duration
	MaxRetries    int
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DefaultMargin: 60 * time.Second,
		RetryDelay:    5 * time.Second,
		MaxRetries:    3,
	}
}

// Scheduler owns the single deferred refresh timer. States are implicit:
// idle (no timer), armed (timer set), firing (request in flight), retrying
// (fixed-delay timer after a transient failure). Arming always cancels the
// previous timer, and Disarm guarantees a cancelled callback never runs; the
// generation counter is what makes that a clear-timer rather than an
// ignore-on-fire.
type Scheduler struct {
	refresher Refresher
	store     *Store
	margin    MarginSource
	notify    Notifier
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	timer      *time.Timer
	gen        uint64
	retryCount int

	conf SchedulerConfig
}

func NewScheduler(refresher Refresher, store *Store, margin MarginSource, notify Notifier, logger *zap.Logger, conf SchedulerConfig) *Scheduler {
	if conf.DefaultMargin <= 0 {
		conf.DefaultMargin = DefaultSchedulerConfig().DefaultMargin
	}
	if conf.RetryDelay <= 0 {
		conf.RetryDelay = DefaultSchedulerConfig().RetryDelay
	}
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = DefaultSchedulerConfig().MaxRetries
	}
	return &Scheduler{
		refresher: refresher,
		store:     store,
		margin:    margin,
		notify:    notify,
		logger:    logger,
		now:       time.Now,
		conf:      conf,
	}
}

// Arm schedules a refresh for max(0, expiresAt - now - margin). A delay of
// zero or less means the token is expired or about to expire, so the refresh
// fires immediately instead of arming a negative-delay timer. Re-arming is
// idempotent: any previously armed timer is cancelled first.
func (s *Scheduler) Arm(expiresAt int64) {
	margin := s.conf.DefaultMargin
	if s.margin != nil {
		if m := s.margin(); m > 0 {
			margin = m
		}
	}

	s.mu.Lock()
	s.cancelLocked()
	gen := s.gen

	delay := time.Duration(expiresAt-s.now().Unix())*time.Second - margin
	if delay <= 0 {
		s.mu.Unlock()
		go s.fire(gen)
		return
	}

	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
	s.mu.Unlock()

	s.logger.Debug("refresh timer armed",
		zap.Int64("expires_at", expiresAt),
		zap.Duration("delay", delay),
	)
}

// Disarm cancels any pending timer and resets the retry counter. Called on
// logout; a stale callback that already popped is a no-op thanks to the
// generation check.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	s.cancelLocked()
	s.retryCount = 0
	s.mu.Unlock()
}

// cancelLocked invalidates outstanding callbacks. Caller holds s.mu.
func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs one refresh attempt. It never holds the mutex across the network
// call or across store mutations, both of which may re-enter the scheduler.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fp := fingerprint.Generate()
	tokenString, err := s.refresher.RefreshToken(ctx, fp)
	if err == nil {
		// Logout while the request was in flight invalidated this
		// generation; a stale success must not resurrect the cleared
		// session.
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			s.logger.Debug("dropping refresh response for disarmed timer")
			return
		}
		s.mu.Unlock()

		err = s.store.UpdateFromToken(ctx, tokenString)
	}

	if err == nil {
		s.mu.Lock()
		s.retryCount = 0
		s.mu.Unlock()
		s.logger.Info("access token refreshed")
		// UpdateFromToken already re-armed via the store.
		return
	}

	// Auth rejections and malformed tokens are terminal; retrying cannot
	// help, log out right away.
	if !xerrors.Retryable(err) {
		s.logger.Warn("refresh rejected, forcing logout", zap.Error(err))
		s.exhaust(ctx)
		return
	}

	s.mu.Lock()
	if gen != s.gen {
		// Logged out while the request was in flight.
		s.mu.Unlock()
		return
	}
	s.retryCount++
	retries := s.retryCount
	if retries > s.conf.MaxRetries {
		s.retryCount = 0
		s.mu.Unlock()
		s.logger.Error("refresh retries exhausted", zap.Error(err), zap.Int("attempts", retries-1))
		s.exhaust(ctx)
		return
	}
	retryGen := s.gen
	s.timer = time.AfterFunc(s.conf.RetryDelay, func() { s.fire(retryGen) })
	s.mu.Unlock()

	// Transient failures stay silent until retries exhaust.
	s.logger.Warn("refresh failed, retrying",
		zap.Error(err),
		zap.Int("attempt", retries),
		zap.Duration("delay", s.conf.RetryDelay),
	)
}

// exhaust surfaces the failure once and clears the session. Clear disarms,
// so no further attempts can fire.
func (s *Scheduler) exhaust(ctx context.Context) {
	if s.notify != nil {
		s.notify.Notify(EventSessionExpired, map[string]interface{}{
			"reason": xerrors.ErrSessionExpired.Error(),
		})
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session after refresh failure", zap.Error(err))
	}
}
