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
	"console-agent/internal/pkg/token"
	memstorage "console-agent/internal/storage/memory"
)

type recordingNotifier struct {
	mu       sync.Mutex
	events   []string
	payloads map[string]interface{}
}

func (n *recordingNotifier) Notify(event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	if n.payloads == nil {
		n.payloads = make(map[string]interface{})
	}
	n.payloads[event] = payload
}

func (n *recordingNotifier) payload(event string) interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payloads[event]
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

func mintToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	gen := token.NewGenerator([]byte("test-secret"), "admin-console", "console-agents", ttl)
	signed, _, err := gen.Generate(subject, "7", ttl)
	require.NoError(t, err)
	return signed
}

func TestSetFromTokenAuthenticates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memstorage.New(), &recordingNotifier{}, zap.NewNop())

	require.False(t, store.IsAuthenticated())

	err := store.SetFromToken(ctx, mintToken(t, "alice", 30*time.Minute))
	require.NoError(t, err)

	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.IsExpired())

	sess := store.Snapshot()
	assert.Equal(t, "alice", sess.Subject)
	assert.Equal(t, "7", sess.UserID)
	assert.True(t, sess.LoggedIn)
	assert.Greater(t, sess.ExpiresAt, sess.IssuedAt)
}

func TestSetFromTokenMalformed(t *testing.T) {
	store := NewStore(memstorage.New(), nil, zap.NewNop())

	err := store.SetFromToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrDecode))
	assert.False(t, store.IsAuthenticated())
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	kv := memstorage.New()
	store := NewStore(kv, &recordingNotifier{}, zap.NewNop())

	require.NoError(t, store.SetFromToken(ctx, mintToken(t, "alice", time.Hour)))
	require.True(t, store.IsAuthenticated())

	require.NoError(t, store.Clear(ctx))

	assert.False(t, store.IsAuthenticated())
	assert.True(t, store.Snapshot().Empty())

	// Persisted state must be gone: a fresh store loads nothing.
	reloaded := NewStore(kv, nil, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	assert.False(t, reloaded.IsAuthenticated())
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	kv := memstorage.New()

	first := NewStore(kv, nil, zap.NewNop())
	require.NoError(t, first.SetFromToken(ctx, mintToken(t, "alice", time.Hour)))

	second := NewStore(kv, nil, zap.NewNop())
	require.NoError(t, second.Load(ctx))

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "alice", second.Snapshot().Subject)
}

func TestUpdateFromTokenPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memstorage.New(), nil, zap.NewNop())

	require.NoError(t, store.SetFromToken(ctx, mintToken(t, "alice", time.Hour)))
	before := store.Snapshot()

	// Refresh responses may carry different claims; subject and user id
	// must survive.
	gen := token.NewGenerator([]byte("test-secret"), "admin-console", "console-agents", time.Hour)
	refreshed, _, err := gen.Generate("", "", 2*time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.UpdateFromToken(ctx, refreshed))
	after := store.Snapshot()

	assert.Equal(t, before.Subject, after.Subject)
	assert.Equal(t, before.UserID, after.UserID)
	assert.NotEqual(t, before.TokenID, after.TokenID)
	assert.Greater(t, after.ExpiresAt, before.ExpiresAt)
}

func TestIsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memstorage.New(), nil, zap.NewNop())

	// No session at all: treated as expired.
	assert.True(t, store.IsExpired())

	require.NoError(t, store.SetFromToken(ctx, mintToken(t, "alice", time.Hour)))
	assert.False(t, store.IsExpired())

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.True(t, store.IsExpired())
	assert.Equal(t, time.Duration(0), store.TimeUntilExpiry())
}

func TestStatusView(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memstorage.New(), nil, zap.NewNop())
	require.NoError(t, store.SetFromToken(ctx, mintToken(t, "alice", time.Hour)))

	st := store.Status()
	assert.True(t, st.Authenticated)
	assert.False(t, st.Expired)
	assert.Equal(t, "alice", st.Subject)
	assert.Greater(t, st.TimeUntilExpiry, int64(3500))
}
