package runtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/careerloop/platform/internal/pubsub"
)

// DeadLetter is one event that exhausted its retries or failed permanently
// for a subscription, retained for manual inspection.
type DeadLetter struct {
	Topic      string          `json:"topic"`
	Consumer   string          `json:"consumer"`
	Reason     string          `json:"reason"`
	Attempts   int             `json:"attempts"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// DeadLetterStore subscribes to the dead-letter topic and keeps the most
// recent entries in a bounded ring. Durable retention is a dead-letter
// consumer's concern; this store backs the admin inspection surface.
type DeadLetterStore struct {
	mu      sync.RWMutex
	entries []DeadLetter
	limit   int
}

// NewDeadLetterStore creates a store retaining at most limit entries.
func NewDeadLetterStore(limit int) *DeadLetterStore {
	if limit <= 0 {
		limit = 256
	}
	return &DeadLetterStore{limit: limit}
}

// Attach starts consuming the dead-letter topic off the bus. The raw
// subscribe path is deliberate: dead-letter recording must not itself be
// subject to the retry and poison policy it observes.
func (s *DeadLetterStore) Attach(ctx context.Context, bus *pubsub.Bus, deadLetterTopic string) error {
	return bus.Subscribe(ctx, deadLetterTopic, s.record)
}

func (s *DeadLetterStore) record(ctx context.Context, msg pubsub.Message) error {
	attempts := 0
	if raw := msg.Metadata[metaKeyAttempts]; raw != "" {
		attempts, _ = strconv.Atoi(raw)
	}

	entry := DeadLetter{
		Topic:      msg.Metadata[middleware.PoisonedTopicKey],
		Consumer:   msg.Metadata[metaKeyConsumer],
		Reason:     msg.Metadata[middleware.ReasonForPoisonedKey],
		Attempts:   attempts,
		Payload:    json.RawMessage(msg.Payload),
		RecordedAt: time.Now().UTC(),
	}
	if entry.Topic == "" {
		entry.Topic = msg.Topic
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	return nil
}

// List returns a copy of the retained entries, oldest first.
func (s *DeadLetterStore) List() []DeadLetter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DeadLetter, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *DeadLetterStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Name identifies the store to the maintenance aggregator.
func (s *DeadLetterStore) Name() string { return "dead-letters" }

// ClearData drops all retained entries. Clearing an already-empty store is
// a no-op success.
func (s *DeadLetterStore) ClearData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}
