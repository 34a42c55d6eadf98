package runtime

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware creates a watermill middleware that adds OpenTelemetry
// tracing to every delivery attempt. Spans carry the topic, consumer and
// attempt count so a failed delivery can be diagnosed without replaying
// production traffic.
func TracingMiddleware(tracer trace.Tracer) func(message.HandlerFunc) message.HandlerFunc {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx := msg.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			topic := msg.Metadata.Get(metaKeyTopicMirror)
			if topic == "" {
				topic = message.SubscribeTopicFromCtx(ctx)
			}

			spanCtx, span := tracer.Start(ctx, fmt.Sprintf("delivery.process.%s", topic),
				trace.WithAttributes(
					attribute.String("messaging.system", "watermill"),
					attribute.String("messaging.operation", "process"),
					attribute.String("messaging.destination", topic),
					attribute.String("messaging.message_id", msg.UUID),
					attribute.String("messaging.consumer", msg.Metadata.Get(metaKeyConsumer)),
					attribute.String("messaging.attempt", msg.Metadata.Get(metaKeyAttempts)),
					attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
				),
			)
			defer span.End()

			// Update message context with span context
			msg.SetContext(spanCtx)

			producedMessages, err := h(msg)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			return producedMessages, nil
		}
	}
}

// metaKeyTopicMirror matches the bus metadata key that mirrors the topic
// onto the message itself.
const metaKeyTopicMirror = "topic"
