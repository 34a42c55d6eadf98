package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate checks typed payloads against their `validate` struct tags before
// they ever reach the wire. A single instance caches struct metadata.
var validate = validator.New()

// Event[T] wraps a topic name and provides type-safe publishing.
// Declaring one registers the topic with the default topicmgr.Manager.
type Event[T any] struct {
	topicName string
	config    topicmgr.TopicConfig
}

// NewEvent creates a typed event and auto-registers it with the Default Manager.
// It uses reflection to generate the 'Metadata' fields from the struct tags of T.
func NewEvent[T any](name string, description string) Event[T] {
	// Reflect on T to get field names for documentation
	var zero T
	t := reflect.TypeOf(zero)
	fields := make([]string, 0)

	// Handle both struct and pointer to struct
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			jsonTag := field.Tag.Get("json")
			// Extract just the name part of the tag (ignore omitempty, etc.)
			if jsonTag != "" && jsonTag != "-" {
				nameEnd := 0
				for nameEnd < len(jsonTag) && jsonTag[nameEnd] != ',' {
					nameEnd++
				}
				fields = append(fields, jsonTag[:nameEnd])
			}
		}
	}

	config := topicmgr.TopicConfig{
		Name:        name,
		Description: description,
		Guarantee:   topicmgr.GuaranteeAtLeastOnce,
		Metadata: map[string]interface{}{
			"payload_fields": fields,
			"type_name":      t.Name(),
			"is_typed":       true,
		},
	}

	// Events are defined at package level (init time) and a registration
	// failure means a configuration error that should stop startup.
	topicmgr.Default().MustRegister(topicmgr.Define(config))

	return Event[T]{
		topicName: name,
		config:    config,
	}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T',
// and validator tags on T are enforced before the event is handed to the
// runtime, so subscribers never see a payload that violates the topic schema.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("payload for topic %s rejected: %w", event.Name(), err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for topic %s: %w", event.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
		Metadata: map[string]string{
			// event_id identifies the logical event across redeliveries,
			// giving idempotent consumers a stable deduplication handle.
			"event_id":    uuid.NewString(),
			"enqueued_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
}
