// Package pubsub provides a small generic publish/subscribe broker used to
// fan out log entries and watched file changes.
package pubsub

import (
	"context"
	"time"
)

// EventType identifies what a published event describes.
type EventType string

const (
	LogEvent    EventType = "log"    // a log entry was written
	ChangeEvent EventType = "change" // watched files changed
)

// Event wraps a typed payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
