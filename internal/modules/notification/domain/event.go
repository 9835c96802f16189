package domain

import "context"

// EventType is the closed set of messages the delivery channel carries.
// A typed envelope instead of string event names keeps payload shape checked
// by the compiler.
type EventType string

const (
	EventNewNotification EventType = "newNotification"
)

// Event is the envelope pushed to connected clients. The notification inside
// is already rendered; the channel never re-templates.
type Event struct {
	Type         EventType     `json:"type"`
	Notification *Notification `json:"payload"`
}

// Publisher is the delivery-channel port. Implementations are best-effort:
// the event store stays authoritative, so a failed publish only costs
// latency, never the notification itself.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
