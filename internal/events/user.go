// Package events declares the platform's typed topics and their payload
// schemas. Every topic is at-least-once: subscribers may see duplicates and
// must be idempotent.
package events

import (
	"time"

	"github.com/careerloop/platform/internal/pubsub"
)

// UserCreatedPayload describes a freshly committed user account.
type UserCreatedPayload struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name,omitempty"`
}

// UserDeletedPayload describes an account removal. UserEmail may be empty
// when the deletion source no longer has it.
type UserDeletedPayload struct {
	UserID    string    `json:"user_id" validate:"required"`
	UserEmail string    `json:"user_email,omitempty" validate:"omitempty,email"`
	DeletedAt time.Time `json:"deleted_at" validate:"required"`
	Source    string    `json:"source" validate:"required"`
}

// UserFeedbackSubmittedPayload carries a feedback form submission destined
// for the ticketing collaborator.
type UserFeedbackSubmittedPayload struct {
	UserID      string    `json:"user_id" validate:"required"`
	UserEmail   string    `json:"user_email" validate:"required,email"`
	UserName    string    `json:"user_name" validate:"required"`
	Subject     string    `json:"subject" validate:"required"`
	Message     string    `json:"message" validate:"required"`
	SubmittedAt time.Time `json:"submitted_at" validate:"required"`
}

var (
	UserCreated = pubsub.NewEvent[UserCreatedPayload](
		"user-created",
		"Published after a new user account commits",
	)

	UserDeleted = pubsub.NewEvent[UserDeletedPayload](
		"user-deleted",
		"Published after a user account is removed",
	)

	UserFeedbackSubmitted = pubsub.NewEvent[UserFeedbackSubmittedPayload](
		"user-feedback-submitted",
		"Published when a user submits the feedback form",
	)
)
