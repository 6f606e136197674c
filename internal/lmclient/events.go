package lmclient

import "time"

// Event reports something observable about a facade call. The only event the
// Client emits today is "fallback".
type Event struct {
	Name      string         `json:"name"`
	Op        string         `json:"op"`
	CallID    string         `json:"call_id"`
	Transport string         `json:"transport"`
	Time      time.Time      `json:"time"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// EventPublisher receives events from the Client. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
