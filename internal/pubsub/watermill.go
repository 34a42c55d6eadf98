package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus implements the Publisher and Subscriber interfaces using watermill's
// GoChannel transport. The same instance also feeds the delivery runtime's
// router, so everything published here flows through the retry/dead-letter
// policy of each bound subscription.
type Bus struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
}

const (
	// Metadata keys used to transfer our Message structure fields through watermill's message.
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"
)

// NewBus initializes the in-memory Pub/Sub transport.
func NewBus() *Bus {
	logger := watermill.NewSlogLogger(slog.Default())
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			// Buffer publishes so a slow subscriber never blocks the
			// publishing request path.
			OutputChannelBuffer: 64,
		},
		logger,
	)

	return &Bus{
		pub:    goChannel,
		sub:    goChannel,
		logger: logger,
	}
}

// WatermillPublisher exposes the underlying transport publisher for the
// delivery runtime's router wiring (poison queue publishing).
func (b *Bus) WatermillPublisher() message.Publisher {
	return b.pub
}

// WatermillSubscriber exposes the underlying transport subscriber for the
// delivery runtime's router wiring.
func (b *Bus) WatermillSubscriber() message.Subscriber {
	return b.sub
}

// Logger returns the watermill logger adapter shared with the router.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// ToWatermillMessage converts our pubsub.Message to a watermill message.
func ToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)

	// Transfer our custom fields to watermill's metadata
	wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	// Merge any additional metadata
	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}

	return wmMsg
}

// FromWatermillMessage converts a watermill message back to our internal pubsub.Message.
func FromWatermillMessage(wmMsg *message.Message) Message {
	// Extract our custom fields from watermill's metadata
	userID := wmMsg.Metadata.Get(metaKeyUserID)
	topic := wmMsg.Metadata.Get(metaKeyTopic)

	// Create a new map for additional metadata, excluding our reserved keys
	// but ensuring user_id is present if it exists.
	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyUserID && k != metaKeyTopic {
			metadata[k] = v
		}
	}
	if userID != "" {
		metadata[metaKeyUserID] = userID
	}

	return Message{
		Topic:    topic,
		UserID:   userID,
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface. It returns once the transport
// has accepted the event; delivery to subscribers is asynchronous.
func (b *Bus) Publish(ctx context.Context, msg Message) error {
	wmMsg := ToWatermillMessage(msg)
	wmMsg.SetContext(ctx)
	if err := b.pub.Publish(msg.Topic, wmMsg); err != nil {
		return fmt.Errorf("%w: topic %s: %v", ErrPublishFailure, msg.Topic, err)
	}
	return nil
}

// Subscribe implements the Subscriber interface. It attaches a raw handler
// directly to the transport, bypassing the delivery runtime's retry policy.
// Production consumers bind through runtime.Runtime instead; this path
// exists for lightweight observers (e.g., the dead-letter store).
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	// Run the message processing in a separate goroutine so that Subscribe is non-blocking.
	go func() {
		for wmMsg := range messages {
			msg := FromWatermillMessage(wmMsg)

			if err := handler(ctx, msg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				wmMsg.Nack()
			} else {
				wmMsg.Ack()
			}
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close implements the Publisher and Subscriber interface to shut down the bus.
func (b *Bus) Close() error {
	return b.sub.Close()
}
