package topicmgr

import (
	"time"
)

// Guarantee describes the delivery contract a topic offers its subscribers.
type Guarantee string

const (
	// GuaranteeAtLeastOnce means a message may be delivered to a consumer
	// more than once; consumers must tolerate duplicates.
	GuaranteeAtLeastOnce Guarantee = "at-least-once"
)

// Topic represents a strongly-typed topic identifier with compile-time safety
type Topic interface {
	// Name returns the unique string identifier for this topic
	Name() string

	// Description returns human-readable documentation
	Description() string

	// Guarantee returns the delivery guarantee subscribers can rely on
	Guarantee() Guarantee

	// Example returns a usage example
	Example() string

	// Metadata returns additional topic information
	Metadata() map[string]interface{}
}

// TypedTopic provides compile-time safety for topic usage
type TypedTopic struct {
	name        string
	description string
	guarantee   Guarantee
	example     string
	metadata    map[string]interface{}
}

// Compile-time interface compliance check
var _ Topic = (*TypedTopic)(nil)

// TopicConfig holds configuration for creating a new topic
type TopicConfig struct {
	Name        string                 `json:"name"`        // Unique identifier
	Description string                 `json:"description"` // Human-readable description
	Guarantee   Guarantee              `json:"guarantee"`   // Delivery guarantee
	Example     string                 `json:"example"`     // Usage example
	Metadata    map[string]interface{} `json:"metadata"`    // Additional data
}

// RegistryEntry represents a topic entry in the registry with metadata
type RegistryEntry struct {
	Topic        Topic     `json:"topic"`
	RegisteredAt time.Time `json:"registered_at"`
}

// TopicError represents structured errors in the topic management system
type TopicError struct {
	Type    ErrorType `json:"type"`
	Topic   string    `json:"topic"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// ErrorType defines the type of topic management error
type ErrorType string

const (
	ErrorTopicNotFound         ErrorType = "topic_not_found"
	ErrorDuplicateRegistration ErrorType = "duplicate_registration"
	ErrorValidationFailed      ErrorType = "validation_failed"
)

// Error implements the error interface
func (e *TopicError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *TopicError) Unwrap() error {
	return e.Cause
}

// Name returns the topic's unique identifier
func (t *TypedTopic) Name() string {
	return t.name
}

// Description returns human-readable documentation
func (t *TypedTopic) Description() string {
	return t.description
}

// Guarantee returns the delivery guarantee subscribers can rely on
func (t *TypedTopic) Guarantee() Guarantee {
	return t.guarantee
}

// Example returns a usage example
func (t *TypedTopic) Example() string {
	return t.example
}

// Metadata returns additional topic information
func (t *TypedTopic) Metadata() map[string]interface{} {
	if t.metadata == nil {
		return make(map[string]interface{})
	}
	// Return a copy to prevent external modification
	result := make(map[string]interface{})
	for k, v := range t.metadata {
		result[k] = v
	}
	return result
}

// String returns the topic name for easy debugging
func (t *TypedTopic) String() string {
	return t.name
}

// Define creates a new typed topic from a config. Topics missing an explicit
// guarantee default to at-least-once, the only guarantee the runtime offers.
func Define(config TopicConfig) Topic {
	if config.Guarantee == "" {
		config.Guarantee = GuaranteeAtLeastOnce
	}
	return &TypedTopic{
		name:        config.Name,
		description: config.Description,
		guarantee:   config.Guarantee,
		example:     config.Example,
		metadata:    config.Metadata,
	}
}
