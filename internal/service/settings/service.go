// internal/service/settings/service.go
package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	settingsdom "console-agent/internal/domain/settings"
)

// DebounceWindow is the quiet window that coalesces rapid consecutive edits
// of one setting (a slider, a text field) into a single backend write.
const DebounceWindow = 750 * time.Millisecond

// Backend is the slice of the API client the settings service consumes.
type Backend interface {
	GetSettings(ctx context.Context, sectionPath string) ([]settingsdom.Setting, error)
	UpdateSetting(ctx context.Context, sectionPath, settingName string, value interface{}) (*settingsdom.Setting, error)
}

// Notifier pushes user-visible events to local UI consumers.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Events emitted by the settings layer.
const (
	EventSettingUpdated      = "setting.updated"
	EventSettingUpdateFailed = "setting.update_failed"
)

// pendingWrite is one debounced backend write. prev holds the value captured
// before the FIRST optimistic mutation of the burst, so a failed flush rolls
// the whole burst back.
type pendingWrite struct {
	value   interface{}
	prev    interface{}
	hasPrev bool
	timer   *time.Timer
}

// Service composes the cache, the backend client and the cross-instance
// synchronizer into the read-through/write-behind settings flow.
type Service struct {
	cache   *Cache
	backend Backend
	syncer  *Synchronizer
	notify  Notifier
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite

	window time.Duration
}

func NewService(cache *Cache, backend Backend, syncer *Synchronizer, notify Notifier, logger *zap.Logger) *Service {
	return &Service{
		cache:   cache,
		backend: backend,
		syncer:  syncer,
		notify:  notify,
		logger:  logger,
		pending: make(map[string]*pendingWrite),
		window:  DebounceWindow,
	}
}

// Get serves a section from the cache when the entry is still inside its TTL
// and falls through to the backend otherwise.
func (s *Service) Get(ctx context.Context, sectionPath string) ([]settingsdom.Setting, error) {
	if data, ok := s.cache.Get(sectionPath); ok {
		return data, nil
	}

	data, err := s.backend.GetSettings(ctx, sectionPath)
	if err != nil {
		return nil, err
	}
	s.cache.Set(sectionPath, data)
	return data, nil
}

// Update applies the optimistic local mutation immediately and synchronously,
// then schedules the backend write behind the debounce window. Consecutive
// updates inside the window collapse into one write carrying the last value;
// the rollback point stays the value before the first edit of the burst.
func (s *Service) Update(ctx context.Context, sectionPath, settingName string, value interface{}) {
	prev, hadEntry := s.cache.SetOptimistic(sectionPath, settingName, value)

	key := sectionPath + "/" + settingName

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.value = value
		p.timer.Reset(s.window)
		return
	}

	p := &pendingWrite{value: value, prev: prev, hasPrev: hadEntry}
	p.timer = time.AfterFunc(s.window, func() { s.flush(sectionPath, settingName, key) })
	s.pending[key] = p
}

// flush performs the coalesced backend write for one setting.
func (s *Service) flush(sectionPath, settingName, key string) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	confirmed, err := s.backend.UpdateSetting(ctx, sectionPath, settingName, p.value)
	if err != nil {
		// Failed writes roll the optimistic mutation back and surface a
		// notification; session state is untouched.
		if p.hasPrev {
			s.cache.Rollback(sectionPath, settingName, p.prev)
		}
		s.logger.Warn("setting write rejected",
			zap.String("section", sectionPath),
			zap.String("setting", settingName),
			zap.Error(err),
		)
		if s.notify != nil {
			s.notify.Notify(EventSettingUpdateFailed, map[string]interface{}{
				"section_path": sectionPath,
				"setting_name": settingName,
			})
		}
		return
	}

	// Align the local value with what the backend actually stored, then tell
	// the other instances.
	s.cache.SetOptimistic(sectionPath, settingName, confirmed.Value)
	s.syncer.BroadcastUpdate(ctx, sectionPath, settingName, *confirmed)
	if s.notify != nil {
		s.notify.Notify(EventSettingUpdated, confirmed)
	}
}

// Flush forces all pending writes out immediately. Used on shutdown so a
// quit inside the quiet window does not drop edits.
func (s *Service) Flush() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		section, name := splitKey(key)
		s.flush(section, name, key)
	}
}

// RefreshMargin reads the scheduler margin from the cached security section,
// falling back to the supplied default when the value is absent or unusable.
// Cache-only on purpose: a margin lookup must never trigger a network fetch.
func (s *Service) RefreshMargin(fallback time.Duration) time.Duration {
	data, ok := s.cache.Get(settingsdom.SectionSecurity)
	if !ok {
		return fallback
	}
	for _, st := range data {
		if st.SettingName != settingsdom.NameRefreshMargin {
			continue
		}
		if secs, ok := asSeconds(st.Value); ok && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func asSeconds(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func splitKey(key string) (section, name string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
