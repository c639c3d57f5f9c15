// internal/storage/memory/client.go
package memory

import (
	"context"
	"sync"

	"console-agent/internal/storage"
)

// Client is an in-process storage.Store for development runs without Redis
// and for tests. State is lost on exit.
type Client struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Client {
	return &Client{data: make(map[string][]byte)}
}

func (c *Client) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (c *Client) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	c.data[key] = v
	return nil
}

func (c *Client) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}
