package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/careerloop/platform/internal/domain"
	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/module"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/careerloop/platform/internal/registry"
	"github.com/labstack/echo/v4"
)

// ConsumerName is the durable identity of this module's subscription.
const ConsumerName = "feedback-tickets"

// Module forwards user feedback submissions to the ticketing collaborator,
// enriching them from the user directory when the payload is thin.
type Module struct {
	module.BaseModule
	sink      TicketSink
	directory domain.UserDirectory
}

// New creates the feedback module. A nil sink falls back to the log-backed
// implementation.
func New(sink TicketSink, directory domain.UserDirectory) *Module {
	if sink == nil {
		sink = LogTicketSink{}
	}
	return &Module{sink: sink, directory: directory}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "feedback" }

// Boot binds the module's subscription to the delivery runtime.
func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	rt := registry.MustGet(reg, registry.RuntimeKey)
	return rt.Subscribe(events.UserFeedbackSubmitted.Name(), ConsumerName, m.handleFeedback)
}

// handleFeedback builds a ticket from the payload and files it. Filing the
// same ticket twice is the sink's deduplication problem; this handler only
// guarantees it never drops a submission.
func (m *Module) handleFeedback(ctx context.Context, msg pubsub.Message) error {
	var payload events.UserFeedbackSubmittedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal feedback payload: %w", err))
	}

	ticket := Ticket{
		UserID:      payload.UserID,
		UserEmail:   payload.UserEmail,
		UserName:    payload.UserName,
		Subject:     payload.Subject,
		Message:     payload.Message,
		SubmittedAt: payload.SubmittedAt,
	}

	// Prefer the directory's record over self-reported fields when we can
	// get it. A missing user is fine: the payload carries enough.
	if m.directory != nil {
		user, err := m.directory.FindByID(ctx, payload.UserID)
		switch {
		case err == nil:
			ticket.UserEmail = user.Email
			ticket.UserName = user.FirstName
			if user.LastName != "" {
				ticket.UserName += " " + user.LastName
			}
		case errors.Is(err, domain.ErrNotFound):
			// Keep the payload values.
		default:
			return pubsub.Retryable(fmt.Errorf("lookup user %s: %w", payload.UserID, err))
		}
	}

	if err := m.sink.Submit(ctx, ticket); err != nil {
		return pubsub.Retryable(fmt.Errorf("submit ticket for %s: %w", payload.UserID, err))
	}
	return nil
}
