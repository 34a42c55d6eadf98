package feedback

import (
	"context"
	"log/slog"
	"time"
)

// Ticket is the shape handed to the external help-desk collaborator.
type Ticket struct {
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TicketSink is the narrow interface to the ticketing system. The real
// implementation calls the help-desk API; the log-backed default records
// the ticket locally.
type TicketSink interface {
	Submit(ctx context.Context, ticket Ticket) error
}

// LogTicketSink prints tickets instead of filing them.
type LogTicketSink struct{}

func (LogTicketSink) Submit(ctx context.Context, ticket Ticket) error {
	slog.Info("Ticket filed (logged)",
		"user_id", ticket.UserID,
		"subject", ticket.Subject,
		"submitted_at", ticket.SubmittedAt,
	)
	return nil
}
