package topicmgr

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry manages the collection of registered topics with metadata
type Registry struct {
	entries map[string]*RegistryEntry
	mu      sync.RWMutex
}

// NewRegistry creates a new topic registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a topic to the registry
func (r *Registry) Register(topic Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic == nil {
		return &TopicError{
			Type:    ErrorValidationFailed,
			Message: "cannot register nil topic",
		}
	}

	name := topic.Name()
	if name == "" {
		return &TopicError{
			Type:    ErrorValidationFailed,
			Topic:   name,
			Message: "topic name cannot be empty",
		}
	}

	// Check for duplicate registration
	if _, exists := r.entries[name]; exists {
		return &TopicError{
			Type:    ErrorDuplicateRegistration,
			Topic:   name,
			Message: fmt.Sprintf("topic already registered: %s", name),
		}
	}

	r.entries[name] = &RegistryEntry{
		Topic:        topic,
		RegisteredAt: time.Now(),
	}
	return nil
}

// Get retrieves a topic by name
func (r *Registry) Get(name string) (Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return entry.Topic, true
}

// List returns all registered topics sorted by name
func (r *Registry) List() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]Topic, 0, len(r.entries))
	for _, entry := range r.entries {
		topics = append(topics, entry.Topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name() < topics[j].Name() })
	return topics
}

// Count returns the number of registered topics
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Reset clears all registered topics. This should only be used in tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]*RegistryEntry)
}
