package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"console-agent/internal/bus"
	settingsdom "console-agent/internal/domain/settings"
	xerrors "console-agent/internal/pkg/errors"
)

type updateCall struct {
	section string
	name    string
	value   interface{}
}

type fakeBackend struct {
	mu       sync.Mutex
	sections map[string][]settingsdom.Setting
	gets     int
	updates  []updateCall
	fail     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sections: map[string][]settingsdom.Setting{
			settingsdom.SectionSecurity: securitySection(),
		},
	}
}

func (f *fakeBackend) GetSettings(_ context.Context, sectionPath string) ([]settingsdom.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	data, ok := f.sections[sectionPath]
	if !ok {
		return nil, xerrors.Wrap(xerrors.ErrServer, "unknown section")
	}
	out := make([]settingsdom.Setting, len(data))
	copy(out, data)
	return out, nil
}

func (f *fakeBackend) UpdateSetting(_ context.Context, sectionPath, settingName string, value interface{}) (*settingsdom.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, updateCall{section: sectionPath, name: settingName, value: value})
	return &settingsdom.Setting{
		SectionPath: sectionPath,
		SettingName: settingName,
		Value:       value,
		IsPublic:    true,
	}, nil
}

func (f *fakeBackend) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeBackend) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]updateCall, len(f.updates))
	copy(out, f.updates)
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
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

func newTestService(backend Backend, b bus.Bus, notify Notifier) (*Service, *Cache, *Synchronizer) {
	cache := NewCache(0)
	syncer := NewSynchronizer(b, cache, zap.NewNop())
	svc := NewService(cache, backend, syncer, notify, zap.NewNop())
	svc.window = 20 * time.Millisecond
	return svc, cache, syncer
}

func TestGetReadsThroughOnce(t *testing.T) {
	backend := newFakeBackend()
	svc, _, _ := newTestService(backend, bus.NewMemoryBus(), nil)
	ctx := context.Background()

	first, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// Second read inside the TTL comes out of the cache.
	_, err = svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.getCount())
}

func TestGetPropagatesBackendError(t *testing.T) {
	backend := newFakeBackend()
	svc, _, _ := newTestService(backend, bus.NewMemoryBus(), nil)

	_, err := svc.Get(context.Background(), "Application.Nope")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrServer))
}

func TestUpdateDebouncesBurstIntoOneWrite(t *testing.T) {
	backend := newFakeBackend()
	notify := &recordingNotifier{}
	svc, cache, _ := newTestService(backend, bus.NewMemoryBus(), notify)
	ctx := context.Background()

	_, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)

	// A rapid burst, e.g. a user dragging a slider.
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(90))
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(120))
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(150))

	// The local view reflects the last edit immediately.
	data, ok := cache.Get(settingsdom.SectionSecurity)
	require.True(t, ok)
	assert.Equal(t, float64(150), data[0].Value)

	require.Eventually(t, func() bool {
		return len(backend.updateCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	calls := backend.updateCalls()
	assert.Equal(t, settingsdom.NameRefreshMargin, calls[0].name)
	assert.Equal(t, float64(150), calls[0].value)
	assert.Equal(t, 1, notify.count(EventSettingUpdated))

	// Nothing else trickles out after the window closes.
	time.Sleep(3 * svc.window)
	assert.Len(t, backend.updateCalls(), 1)
}

func TestUpdateDistinctSettingsWriteIndependently(t *testing.T) {
	backend := newFakeBackend()
	svc, _, _ := newTestService(backend, bus.NewMemoryBus(), nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)

	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(90))
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameSessionTimeout, float64(3600))

	require.Eventually(t, func() bool {
		return len(backend.updateCalls()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateRollsBackOnRejectedWrite(t *testing.T) {
	backend := newFakeBackend()
	backend.fail = xerrors.Wrap(xerrors.ErrValidation, "value out of range")
	notify := &recordingNotifier{}
	svc, cache, _ := newTestService(backend, bus.NewMemoryBus(), notify)
	ctx := context.Background()

	_, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)

	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(90))
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(120))

	require.Eventually(t, func() bool {
		return notify.count(EventSettingUpdateFailed) == 1
	}, time.Second, 5*time.Millisecond)

	// The whole burst rolled back to the value before the first edit.
	data, ok := cache.Get(settingsdom.SectionSecurity)
	require.True(t, ok)
	assert.Equal(t, float64(60), data[0].Value)
	assert.Equal(t, 0, notify.count(EventSettingUpdated))
}

func TestConfirmedWriteBroadcastsToOtherInstances(t *testing.T) {
	backend := newFakeBackend()
	b := bus.NewMemoryBus()
	svc, _, _ := newTestService(backend, b, nil)
	ctx := context.Background()

	// A second instance listening on the same channel.
	remoteCache := NewCache(0)
	remote := NewSynchronizer(b, remoteCache, zap.NewNop())
	require.NoError(t, remote.InitSync(ctx))

	_, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)
	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(300))

	require.Eventually(t, func() bool {
		data, ok := remoteCache.Get(settingsdom.SectionSecurity)
		return ok && len(data) == 1 && data[0].Value == float64(300)
	}, time.Second, 5*time.Millisecond)
}

func TestFlushWritesPendingImmediately(t *testing.T) {
	backend := newFakeBackend()
	svc, _, _ := newTestService(backend, bus.NewMemoryBus(), nil)
	svc.window = time.Hour // never fires on its own
	ctx := context.Background()

	_, err := svc.Get(ctx, settingsdom.SectionSecurity)
	require.NoError(t, err)

	svc.Update(ctx, settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(90))
	svc.Flush()

	calls := backend.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, float64(90), calls[0].value)
}

func TestRefreshMargin(t *testing.T) {
	backend := newFakeBackend()
	svc, cache, _ := newTestService(backend, bus.NewMemoryBus(), nil)
	fallback := 60 * time.Second

	// Nothing cached yet: the fallback wins without a network fetch.
	assert.Equal(t, fallback, svc.RefreshMargin(fallback))
	assert.Equal(t, 0, backend.getCount())

	cache.Set(settingsdom.SectionSecurity, securitySection())
	assert.Equal(t, 60*time.Second, svc.RefreshMargin(fallback))

	cache.SetOptimistic(settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, float64(120))
	assert.Equal(t, 120*time.Second, svc.RefreshMargin(fallback))

	// Unusable values fall back too.
	cache.SetOptimistic(settingsdom.SectionSecurity, settingsdom.NameRefreshMargin, "soon")
	assert.Equal(t, fallback, svc.RefreshMargin(fallback))
}
