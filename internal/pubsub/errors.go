package pubsub

import (
	"errors"
	"fmt"
)

// ErrPublishFailure indicates the delivery runtime could not accept an
// event (e.g., backing transport unavailable). Callers that already
// committed their local state change should log and continue.
var ErrPublishFailure = errors.New("publish failure")

// FailureClass tags a handler error so the delivery runtime can dispatch on
// it instead of on error identity.
type FailureClass string

const (
	// ClassRetryable marks transient failures: the runtime redelivers with
	// backoff until success or the attempt ceiling.
	ClassRetryable FailureClass = "retryable"
	// ClassPermanent marks data failures (malformed payload, schema
	// violation): the runtime dead-letters immediately, no retries.
	ClassPermanent FailureClass = "permanent"
)

// ClassifiedError wraps a handler failure with its retry classification.
type ClassifiedError struct {
	Class FailureClass
	Err   error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Class, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Retryable tags err as a transient failure that should be redelivered.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: ClassRetryable, Err: err}
}

// Permanent tags err as a data failure that must skip retries and
// dead-letter immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: ClassPermanent, Err: err}
}

// IsPermanent reports whether err is classified as a permanent failure.
func IsPermanent(err error) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Class == ClassPermanent
}

// IsRetryable reports whether err should trigger redelivery. Untagged
// errors count as retryable: losing an event silently is worse than an
// extra delivery to an idempotent handler.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !IsPermanent(err)
}
