package events

import (
	"time"

	"github.com/careerloop/platform/internal/pubsub"
)

// WaitlistSubmittedPayload records a new waitlist signup.
type WaitlistSubmittedPayload struct {
	Email       string    `json:"email" validate:"required,email"`
	Referrer    string    `json:"referrer" validate:"required"`
	SubmittedAt time.Time `json:"submitted_at" validate:"required"`
}

// WaitlistLoopsSyncTriggeredPayload asks the waitlist module to push its
// current snapshot to the external directory.
type WaitlistLoopsSyncTriggeredPayload struct {
	TriggeredAt time.Time `json:"triggered_at" validate:"required"`
}

var (
	WaitlistSubmitted = pubsub.NewEvent[WaitlistSubmittedPayload](
		"waitlist-submitted",
		"Published when someone joins the waitlist",
	)

	WaitlistLoopsSyncTriggered = pubsub.NewEvent[WaitlistLoopsSyncTriggeredPayload](
		"waitlist-loops-sync-triggered",
		"Published to trigger a sync of the waitlist to the external directory",
	)
)
