package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	xerrors "console-agent/internal/pkg/errors"
	"console-agent/internal/pkg/fingerprint"
	"console-agent/internal/storage"
	memstorage "console-agent/internal/storage/memory"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	fn    func(attempt int) (string, error)
}

func (f *fakeRefresher) RefreshToken(_ context.Context, _ fingerprint.Fingerprint) (string, error) {
	f.mu.Lock()
	f.calls++
	attempt := f.calls
	fn := f.fn
	f.mu.Unlock()
	return fn(attempt)
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DefaultMargin: 60 * time.Second,
		RetryDelay:    10 * time.Millisecond,
		MaxRetries:    3,
	}
}

func wireScheduler(t *testing.T, ref *fakeRefresher, notify *recordingNotifier, margin MarginSource) (*Store, *Scheduler) {
	t.Helper()
	store := NewStore(memstorage.New(), notify, zap.NewNop())
	sched := NewScheduler(ref, store, margin, notify, zap.NewNop(), testSchedulerConfig())
	store.SetScheduler(sched)
	return store, sched
}

func TestSchedulerFiresImmediatelyInsideMargin(t *testing.T) {
	notify := &recordingNotifier{}
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return mintToken(t, "alice", 2 * time.Hour), nil
	}}
	store, _ := wireScheduler(t, ref, notify, nil)

	// 30s of lifetime is inside the 60s margin: refresh fires right away.
	require.NoError(t, store.SetFromToken(context.Background(), mintToken(t, "alice", 30*time.Second)))

	require.Eventually(t, func() bool {
		return ref.callCount() == 1 && store.TimeUntilExpiry() > time.Hour
	}, time.Second, 5*time.Millisecond)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "alice", store.Snapshot().Subject)
	assert.Equal(t, 0, notify.count(EventSessionExpired))
}

func TestSchedulerRetriesThenForcesLogoutOnce(t *testing.T) {
	notify := &recordingNotifier{}
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return "", xerrors.Wrap(xerrors.ErrNetwork, "refresh request")
	}}
	store, _ := wireScheduler(t, ref, notify, nil)

	require.NoError(t, store.SetFromToken(context.Background(), mintToken(t, "alice", 10*time.Second)))

	// Initial attempt plus three fixed-delay retries, then exactly one
	// forced logout.
	require.Eventually(t, func() bool {
		return notify.count(EventSessionExpired) == 1 && !store.IsAuthenticated()
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 4, ref.callCount())

	payload, ok := notify.payload(EventSessionExpired).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, xerrors.ErrSessionExpired.Error(), payload["reason"])

	// Clearing disarmed the scheduler: no further attempts trickle in.
	time.Sleep(5 * testSchedulerConfig().RetryDelay)
	assert.Equal(t, 4, ref.callCount())
	assert.Equal(t, 1, notify.count(EventSessionExpired))
}

func TestSchedulerAuthErrorLogsOutWithoutRetry(t *testing.T) {
	notify := &recordingNotifier{}
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return "", xerrors.Wrap(xerrors.ErrAuth, "refresh request")
	}}
	store, _ := wireScheduler(t, ref, notify, nil)

	require.NoError(t, store.SetFromToken(context.Background(), mintToken(t, "alice", 10*time.Second)))

	require.Eventually(t, func() bool {
		return notify.count(EventSessionExpired) == 1 && !store.IsAuthenticated()
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, ref.callCount())
}

func TestSchedulerTransientFailureRecovers(t *testing.T) {
	notify := &recordingNotifier{}
	ref := &fakeRefresher{fn: func(attempt int) (string, error) {
		if attempt < 3 {
			return "", xerrors.Wrap(xerrors.ErrServer, "refresh request")
		}
		return mintToken(t, "alice", 2 * time.Hour), nil
	}}
	store, _ := wireScheduler(t, ref, notify, nil)

	require.NoError(t, store.SetFromToken(context.Background(), mintToken(t, "alice", 10*time.Second)))

	require.Eventually(t, func() bool {
		return store.TimeUntilExpiry() > time.Hour
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, ref.callCount())
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, 0, notify.count(EventSessionExpired))
}

func TestDisarmCancelsPendingTimer(t *testing.T) {
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return mintToken(t, "alice", time.Hour), nil
	}}
	// Small margin so a one-second lifetime arms a short positive delay.
	margin := MarginSource(func() time.Duration { return 950 * time.Millisecond })
	_, sched := wireScheduler(t, ref, &recordingNotifier{}, margin)

	sched.Arm(time.Now().Unix() + 1)
	sched.Disarm()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, ref.callCount())
}

func TestReArmCancelsPreviousTimer(t *testing.T) {
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return mintToken(t, "alice", time.Hour), nil
	}}
	margin := MarginSource(func() time.Duration { return 950 * time.Millisecond })
	_, sched := wireScheduler(t, ref, &recordingNotifier{}, margin)

	sched.Arm(time.Now().Unix() + 1)
	// Re-arm far in the future: the first timer must never fire.
	sched.Arm(time.Now().Add(time.Hour).Unix())

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, ref.callCount())
	sched.Disarm()
}

// gatedRefresher lets the test hold a refresh request in flight and release
// it on demand.
type gatedRefresher struct {
	started chan struct{}
	release chan struct{}
	token   string

	mu    sync.Mutex
	calls int
}

func (g *gatedRefresher) RefreshToken(_ context.Context, _ fingerprint.Fingerprint) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.started <- struct{}{}
	<-g.release
	return g.token, nil
}

func (g *gatedRefresher) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestLogoutDuringInflightRefreshDropsStaleSuccess(t *testing.T) {
	ctx := context.Background()
	notify := &recordingNotifier{}
	ref := &gatedRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		token:   mintToken(t, "alice", 2*time.Hour),
	}

	kv := memstorage.New()
	store := NewStore(kv, notify, zap.NewNop())
	sched := NewScheduler(ref, store, nil, notify, zap.NewNop(), testSchedulerConfig())
	store.SetScheduler(sched)

	// Inside the margin, so the refresh fires right away and parks on the
	// gate.
	require.NoError(t, store.SetFromToken(ctx, mintToken(t, "alice", 10*time.Second)))
	<-ref.started

	// Logout while the request is in flight, then let the request succeed.
	require.NoError(t, store.Clear(ctx))
	close(ref.release)

	// The stale success must not resurrect the session, rewrite the
	// persisted keys, or re-arm the timer.
	time.Sleep(100 * time.Millisecond)
	assert.False(t, store.IsAuthenticated())
	assert.True(t, store.Snapshot().Empty())

	_, err := kv.Get(ctx, storage.KeySessionState)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	time.Sleep(5 * testSchedulerConfig().RetryDelay)
	assert.Equal(t, 1, ref.callCount())
}

func TestMarginSourceOverridesDefault(t *testing.T) {
	ref := &fakeRefresher{fn: func(int) (string, error) {
		return mintToken(t, "alice", 2 * time.Hour), nil
	}}
	// Margin larger than the token lifetime forces an immediate fire even
	// though the default margin would have armed a timer.
	margin := MarginSource(func() time.Duration { return 10 * time.Minute })
	store, _ := wireScheduler(t, ref, &recordingNotifier{}, margin)

	require.NoError(t, store.SetFromToken(context.Background(), mintToken(t, "alice", 5*time.Minute)))

	require.Eventually(t, func() bool {
		return ref.callCount() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, store.IsAuthenticated())
}
