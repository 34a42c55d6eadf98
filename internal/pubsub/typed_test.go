package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSignupPayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

var testSignupEvent = NewEvent[testSignupPayload]("test.signup", "Test signup event")

// capturePublisher records every published message.
type capturePublisher struct {
	published []Message
}

func (p *capturePublisher) Publish(ctx context.Context, msg Message) error {
	p.published = append(p.published, msg)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func TestTypedEvent(t *testing.T) {
	t.Run("declaring an event registers its topic", func(t *testing.T) {
		topic, found := topicmgr.Default().Get("test.signup")
		require.True(t, found)
		assert.Equal(t, "test.signup", topic.Name())
		assert.Equal(t, topicmgr.GuaranteeAtLeastOnce, topic.Guarantee())

		fields, ok := topic.Metadata()["payload_fields"].([]string)
		require.True(t, ok)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "name")
	})

	t.Run("valid payload is published with schema enforced", func(t *testing.T) {
		pub := &capturePublisher{}

		err := Publish(context.Background(), pub, testSignupEvent, testSignupPayload{
			Email: "jo@example.com",
			Name:  "Jo",
		})
		require.NoError(t, err)
		require.Len(t, pub.published, 1)

		msg := pub.published[0]
		assert.Equal(t, "test.signup", msg.Topic)
		assert.NotEmpty(t, msg.Metadata["enqueued_at"])
		assert.NotEmpty(t, msg.Metadata["event_id"])

		var decoded testSignupPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, "jo@example.com", decoded.Email)
	})

	t.Run("payload violating the schema is rejected before publish", func(t *testing.T) {
		pub := &capturePublisher{}

		err := Publish(context.Background(), pub, testSignupEvent, testSignupPayload{
			Email: "not-an-email",
			Name:  "Jo",
		})
		require.Error(t, err)
		assert.Empty(t, pub.published)
	})

	t.Run("missing required field is rejected before publish", func(t *testing.T) {
		pub := &capturePublisher{}

		err := Publish(context.Background(), pub, testSignupEvent, testSignupPayload{
			Email: "jo@example.com",
		})
		require.Error(t, err)
		assert.Empty(t, pub.published)
	})
}
