package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/careerloop/platform/internal/domain"
	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/pubsub"
)

// Subscriber owns the waitlist module's event handlers. Every handler is
// idempotent: redelivery of an already-applied event is a no-op success.
type Subscriber struct {
	store     *Store
	directory Directory
}

// NewSubscriber creates the waitlist subscriber.
func NewSubscriber(store *Store, directory Directory) *Subscriber {
	return &Subscriber{store: store, directory: directory}
}

// HandleUserCreated removes a freshly registered user from the waitlist:
// once they have an account they no longer wait. An absent waitlist entry
// is success, not failure, so duplicate deliveries converge.
func (s *Subscriber) HandleUserCreated(ctx context.Context, msg pubsub.Message) error {
	var payload events.UserCreatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal user-created payload: %w", err))
	}

	if err := s.removeEverywhere(ctx, payload.Email); err != nil {
		return err
	}
	slog.Info("Removed registered user from waitlist", "email", payload.Email)
	return nil
}

// HandleUserDeleted clears any waitlist entry left for a deleted account.
func (s *Subscriber) HandleUserDeleted(ctx context.Context, msg pubsub.Message) error {
	var payload events.UserDeletedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal user-deleted payload: %w", err))
	}
	if payload.UserEmail == "" {
		// Nothing to correlate the waitlist entry with.
		return nil
	}
	return s.removeEverywhere(ctx, payload.UserEmail)
}

// HandleWaitlistSubmitted records a signup locally and mirrors it to the
// external directory. Add is an upsert, so duplicates are harmless.
func (s *Subscriber) HandleWaitlistSubmitted(ctx context.Context, msg pubsub.Message) error {
	var payload events.WaitlistSubmittedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal waitlist-submitted payload: %w", err))
	}

	entry := Entry{
		Email:       payload.Email,
		Referrer:    payload.Referrer,
		SubmittedAt: payload.SubmittedAt,
	}
	s.store.Add(entry)

	if err := s.directory.Upsert(ctx, entry); err != nil {
		return pubsub.Retryable(fmt.Errorf("directory upsert for %s: %w", payload.Email, err))
	}
	return nil
}

// HandleLoopsSync pushes the full local snapshot to the external directory.
func (s *Subscriber) HandleLoopsSync(ctx context.Context, msg pubsub.Message) error {
	var payload events.WaitlistLoopsSyncTriggeredPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal sync payload: %w", err))
	}

	entries := s.store.List()
	if err := s.directory.SyncAll(ctx, entries); err != nil {
		return pubsub.Retryable(fmt.Errorf("directory sync: %w", err))
	}
	slog.Info("Waitlist synced to directory", "entries", len(entries), "triggered_at", payload.TriggeredAt)
	return nil
}

func (s *Subscriber) removeEverywhere(ctx context.Context, email string) error {
	if err := s.store.Remove(email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return pubsub.Retryable(fmt.Errorf("remove %s from waitlist store: %w", email, err))
	}
	if err := s.directory.Remove(ctx, email); err != nil {
		return pubsub.Retryable(fmt.Errorf("remove %s from directory: %w", email, err))
	}
	return nil
}
