// internal/service/settings/cache.go
package settings

import (
	"sync"
	"time"

	settingsdom "console-agent/internal/domain/settings"
)

// DefaultTTL bounds how long a fetched section is served without going back
// to the backend.
const DefaultTTL = 5 * time.Minute

// Cache is the per-instance TTL cache in front of the backend settings API.
// It is never a source of truth: an expired entry is indistinguishable from a
// missing one.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]settingsdom.CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]settingsdom.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached settings for a section, or false when the section is
// missing or its entry has outlived the TTL.
func (c *Cache) Get(sectionPath string) ([]settingsdom.Setting, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[sectionPath]
	if !ok || c.now().Sub(entry.Timestamp) >= c.ttl {
		return nil, false
	}

	out := make([]settingsdom.Setting, len(entry.Data))
	copy(out, entry.Data)
	return out, true
}

// Set replaces the section entry and resets its timestamp.
func (c *Cache) Set(sectionPath string, data []settingsdom.Setting) {
	stored := make([]settingsdom.Setting, len(data))
	copy(stored, data)

	c.mu.Lock()
	c.entries[sectionPath] = settingsdom.CacheEntry{
		Timestamp: c.now(),
		Data:      stored,
	}
	c.mu.Unlock()
}

// SetOptimistic mutates one value in place without touching the timestamp,
// keeping the existing expiry horizon. It returns the prior value so the
// write flow can roll back if the backend rejects the write.
func (c *Cache) SetOptimistic(sectionPath, settingName string, value interface{}) (prev interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[sectionPath]
	if !found {
		return nil, false
	}
	for i := range entry.Data {
		if entry.Data[i].SettingName == settingName {
			prev = entry.Data[i].Value
			entry.Data[i].Value = value
			c.entries[sectionPath] = entry
			return prev, true
		}
	}
	return nil, false
}

// Rollback restores a previously captured value after a failed write.
func (c *Cache) Rollback(sectionPath, settingName string, originalValue interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[sectionPath]
	if !found {
		return
	}
	for i := range entry.Data {
		if entry.Data[i].SettingName == settingName {
			entry.Data[i].Value = originalValue
			c.entries[sectionPath] = entry
			return
		}
	}
}

// ApplyRemote applies an update broadcast by another instance: the matching
// setting is replaced by name and the section timestamp reset. A section this
// instance never fetched is created with just the remote setting.
func (c *Cache) ApplyRemote(sectionPath string, updated settingsdom.Setting) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[sectionPath]
	if !found {
		c.entries[sectionPath] = settingsdom.CacheEntry{
			Timestamp: c.now(),
			Data:      []settingsdom.Setting{updated},
		}
		return
	}

	replaced := false
	for i := range entry.Data {
		if entry.Data[i].SettingName == updated.SettingName {
			entry.Data[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		entry.Data = append(entry.Data, updated)
	}
	entry.Timestamp = c.now()
	c.entries[sectionPath] = entry
}
