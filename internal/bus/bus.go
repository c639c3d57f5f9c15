// internal/bus/bus.go
package bus

import "context"

// Handler receives the raw payload of one published message.
type Handler func(payload []byte)

// Bus is a named broadcast channel between agent instances of the same
// origin. Delivery is best-effort, at-most-once and unordered across
// instances; a publisher also receives its own messages, so subscribers
// filter by origin id.
//
// Implementations: redis pub/sub (production), memory bus (tests).
type Bus interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context, h Handler) error
	Close() error
}
