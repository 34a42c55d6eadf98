package topicmgr

import (
	"sync"
)

// Manager provides the main API for topic management. There is typically one
// process-wide manager, populated at startup before any publishes happen.
type Manager struct {
	registry *Registry
}

// NewManager creates a new topic manager with an empty registry
func NewManager() *Manager {
	return &Manager{
		registry: NewRegistry(),
	}
}

// Register adds a topic to the manager's registry
func (m *Manager) Register(topic Topic) error {
	return m.registry.Register(topic)
}

// MustRegister adds a topic and panics on failure. Topics are defined at
// package level (init time) and a failure here means a configuration error
// that should stop startup.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.registry.Register(topic); err != nil {
		panic(err)
	}
}

// Get retrieves a topic by name
func (m *Manager) Get(name string) (Topic, bool) {
	return m.registry.Get(name)
}

// List returns all registered topics
func (m *Manager) List() []Topic {
	return m.registry.List()
}

// Count returns the number of registered topics
func (m *Manager) Count() int {
	return m.registry.Count()
}

// Reset clears the manager's registry. This should only be used in tests.
func (m *Manager) Reset() {
	m.registry.Reset()
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide topic manager.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}
