package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/careerloop/platform/internal/domain"
	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records filed tickets and can fail on demand.
type captureSink struct {
	tickets []Ticket
	err     error
}

func (s *captureSink) Submit(ctx context.Context, ticket Ticket) error {
	if s.err != nil {
		return s.err
	}
	s.tickets = append(s.tickets, ticket)
	return nil
}

// fakeDirectory serves a single user or fails.
type fakeDirectory struct {
	user *domain.User
	err  error
}

func (d *fakeDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.user == nil || d.user.ID != id {
		return nil, domain.ErrNotFound
	}
	return d.user, nil
}

func (d *fakeDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.user == nil || d.user.Email != email {
		return nil, domain.ErrNotFound
	}
	return d.user, nil
}

func feedbackMessage(t *testing.T, payload events.UserFeedbackSubmittedPayload) pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return pubsub.Message{Topic: events.UserFeedbackSubmitted.Name(), Payload: data}
}

func TestHandleFeedback(t *testing.T) {
	payload := events.UserFeedbackSubmittedPayload{
		UserID:      "u-1",
		UserEmail:   "self-reported@example.com",
		UserName:    "Self Reported",
		Subject:     "Broken export",
		Message:     "PDF export hangs",
		SubmittedAt: time.Now(),
	}

	t.Run("ticket is enriched from the user directory", func(t *testing.T) {
		sink := &captureSink{}
		directory := &fakeDirectory{user: &domain.User{
			ID:        "u-1",
			Email:     "jo@example.com",
			FirstName: "Jo",
			LastName:  "Smith",
		}}
		m := New(sink, directory)

		require.NoError(t, m.handleFeedback(context.Background(), feedbackMessage(t, payload)))

		require.Len(t, sink.tickets, 1)
		ticket := sink.tickets[0]
		assert.Equal(t, "jo@example.com", ticket.UserEmail)
		assert.Equal(t, "Jo Smith", ticket.UserName)
		assert.Equal(t, "Broken export", ticket.Subject)
	})

	t.Run("unknown user keeps the self-reported fields", func(t *testing.T) {
		sink := &captureSink{}
		m := New(sink, &fakeDirectory{})

		require.NoError(t, m.handleFeedback(context.Background(), feedbackMessage(t, payload)))

		require.Len(t, sink.tickets, 1)
		assert.Equal(t, "self-reported@example.com", sink.tickets[0].UserEmail)
		assert.Equal(t, "Self Reported", sink.tickets[0].UserName)
	})

	t.Run("directory outage requests redelivery", func(t *testing.T) {
		sink := &captureSink{}
		m := New(sink, &fakeDirectory{err: errors.New("db unavailable")})

		err := m.handleFeedback(context.Background(), feedbackMessage(t, payload))
		require.Error(t, err)
		assert.True(t, pubsub.IsRetryable(err))
		assert.Empty(t, sink.tickets)
	})

	t.Run("sink failure requests redelivery", func(t *testing.T) {
		sink := &captureSink{err: errors.New("help desk down")}
		m := New(sink, &fakeDirectory{})

		err := m.handleFeedback(context.Background(), feedbackMessage(t, payload))
		require.Error(t, err)
		assert.True(t, pubsub.IsRetryable(err))
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		m := New(&captureSink{}, nil)

		err := m.handleFeedback(context.Background(), pubsub.Message{Payload: []byte("not json")})
		require.Error(t, err)
		assert.True(t, pubsub.IsPermanent(err))
	})
}
