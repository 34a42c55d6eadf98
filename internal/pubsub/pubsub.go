package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "user-created").
	Topic string
	// UserID identifies the user the message concerns, when known.
	UserID string
	// Payload contains the raw message data (JSON).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., timestamps).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
//
// Delivery is at-least-once: a handler may see the same message more than
// once and must be idempotent. Return nil to acknowledge, Retryable (or any
// plain error) to request redelivery, or Permanent to dead-letter the
// message without further attempts.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
//
// Publish returns once the event is durably accepted by the delivery
// runtime, not once every subscriber has processed it. Callers that have
// already committed a local state change must treat a publish failure as
// non-fatal to the triggering operation: log it and continue.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with the handler.
	// It blocks until the context is canceled or an irrecoverable error occurs.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
