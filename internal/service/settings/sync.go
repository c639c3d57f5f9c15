// internal/service/settings/sync.go
package settings

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"console-agent/internal/bus"
	settingsdom "console-agent/internal/domain/settings"
)

// Synchronizer fans setting updates out to the other agent instances of the
// same origin and applies remote updates to the local cache. Concurrent
// writes from two instances to the same setting resolve last-message-applied:
// there is no conflict detection, and that gap is deliberate.
type Synchronizer struct {
	bus    bus.Bus
	cache  *Cache
	origin string
	logger *zap.Logger

	mu          sync.Mutex
	initialized bool
}

func NewSynchronizer(b bus.Bus, cache *Cache, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		bus:    b,
		cache:  cache,
		origin: ulid.Make().String(),
		logger: logger,
	}
}

// Origin identifies this instance on the channel.
func (s *Synchronizer) Origin() string {
	return s.origin
}

// InitSync opens the channel subscription. Idempotent: calling it twice arms
// exactly one subscription for the process lifetime.
func (s *Synchronizer) InitSync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := s.bus.Subscribe(ctx, s.onMessage); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// BroadcastUpdate publishes one confirmed server-side write. Best-effort:
// failures are swallowed, broadcast carries no delivery guarantee.
func (s *Synchronizer) BroadcastUpdate(ctx context.Context, sectionPath, settingName string, updated settingsdom.Setting) {
	msg := settingsdom.SyncMessage{
		Type:           settingsdom.MessageTypeSettingUpdated,
		SectionPath:    sectionPath,
		SettingName:    settingName,
		UpdatedSetting: updated,
		Origin:         s.origin,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("failed to encode sync message", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, payload); err != nil {
		s.logger.Debug("settings broadcast dropped", zap.Error(err))
	}
}

// onMessage applies a remote update to the local cache only. It never
// re-broadcasts, which would loop messages between instances forever. The
// transport echoes our own publishes back, so those are filtered by origin.
func (s *Synchronizer) onMessage(payload []byte) {
	var msg settingsdom.SyncMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.logger.Warn("discarding unreadable sync message", zap.Error(err))
		return
	}
	if msg.Origin == s.origin || msg.Type != settingsdom.MessageTypeSettingUpdated {
		return
	}

	s.cache.ApplyRemote(msg.SectionPath, msg.UpdatedSetting)
	s.logger.Debug("applied remote setting update",
		zap.String("section", msg.SectionPath),
		zap.String("setting", msg.SettingName),
	)
}
