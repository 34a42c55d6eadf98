package waitlist

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/careerloop/platform/internal/domain"
)

// Entry is one waitlist signup.
type Entry struct {
	Email       string    `json:"email"`
	Referrer    string    `json:"referrer"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Directory is the narrow interface to the external audience directory the
// waitlist is mirrored into. Implementations talk to the real service;
// the log-backed default just records the calls.
type Directory interface {
	Upsert(ctx context.Context, entry Entry) error
	Remove(ctx context.Context, email string) error
	SyncAll(ctx context.Context, entries []Entry) error
}

// LogDirectory prints directory operations instead of performing them.
type LogDirectory struct{}

func (LogDirectory) Upsert(ctx context.Context, entry Entry) error {
	slog.Info("Directory upsert (logged)", "email", entry.Email, "referrer", entry.Referrer)
	return nil
}

func (LogDirectory) Remove(ctx context.Context, email string) error {
	slog.Info("Directory remove (logged)", "email", email)
	return nil
}

func (LogDirectory) SyncAll(ctx context.Context, entries []Entry) error {
	slog.Info("Directory sync (logged)", "entries", len(entries))
	return nil
}

// Store keeps the local waitlist snapshot. It is the module's source of
// truth for sync operations and the maintenance clear target.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates an empty waitlist store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Add records a signup, replacing any earlier entry for the same email so
// duplicate deliveries converge on the same state.
func (s *Store) Add(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Email] = entry
}

// Remove deletes the entry for an email. Removing an absent email returns
// domain.ErrNotFound, which callers treat as success on redelivery.
func (s *Store) Remove(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[email]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, email)
	return nil
}

// List returns all entries ordered by submission time.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Name identifies the store to the maintenance aggregator.
func (s *Store) Name() string { return "waitlist" }

// ClearData drops every entry. Clearing an empty store is a no-op success.
func (s *Store) ClearData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	return nil
}
