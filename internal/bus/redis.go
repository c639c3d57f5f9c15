// internal/bus/redis.go
package bus

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBus carries broadcast messages over one Redis pub/sub channel.
type RedisBus struct {
	rdb     *goredis.Client
	channel string

	mu     sync.Mutex
	pubsub *goredis.PubSub
	done   chan struct{}
}

func NewRedisBus(rdb *goredis.Client, channel string) *RedisBus {
	return &RedisBus{rdb: rdb, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, payload []byte) error {
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe opens the subscription and pumps inbound messages to h from a
// single goroutine. Calling Subscribe twice returns an error; idempotence is
// the synchronizer's job.
func (b *RedisBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub != nil {
		return fmt.Errorf("already subscribed to %s", b.channel)
	}

	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	b.pubsub = pubsub
	b.done = make(chan struct{})

	go func(ch <-chan *goredis.Message, done chan struct{}) {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h([]byte(msg.Payload))
			case <-done:
				return
			}
		}
	}(pubsub.Channel(), b.done)

	return nil
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub == nil {
		return nil
	}
	close(b.done)
	err := b.pubsub.Close()
	b.pubsub = nil
	return err
}
