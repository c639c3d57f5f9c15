// internal/notify/event.go
package notify

import "time"

// Event is one notification pushed to local UI consumers over the websocket
// surface.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Time    time.Time   `json:"time"`
}

func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		Type:    eventType,
		Payload: payload,
		Time:    time.Now(),
	}
}
