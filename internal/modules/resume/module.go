package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/module"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/careerloop/platform/internal/registry"
	"github.com/labstack/echo/v4"
)

// ConsumerName is the durable identity of this module's subscription.
const ConsumerName = "resume-thumbnails"

// Module watches resume changes and triggers thumbnail regeneration when a
// change is significant enough to alter the rendered preview.
type Module struct {
	module.BaseModule
	publisher pubsub.Publisher
	threshold float64
}

// New creates the resume module. A non-positive threshold falls back to
// DefaultThreshold.
func New(publisher pubsub.Publisher, threshold float64) *Module {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Module{publisher: publisher, threshold: threshold}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "resume" }

// Boot binds the module's subscription to the delivery runtime.
func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	rt := registry.MustGet(reg, registry.RuntimeKey)
	return rt.Subscribe(events.ResumeUpdated.Name(), ConsumerName, m.handleResumeUpdated)
}

// handleResumeUpdated scores the change and, above the threshold, publishes
// a thumbnail-generation trigger. A redelivered event publishes a second
// trigger; the thumbnail pipeline deduplicates by resume id, which is the
// duplicate-suppression contract of at-least-once delivery.
func (m *Module) handleResumeUpdated(ctx context.Context, msg pubsub.Message) error {
	var payload events.ResumeUpdatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal resume-updated payload: %w", err))
	}

	score := Score(payload)
	if score < m.threshold {
		slog.Debug("Resume change below thumbnail threshold",
			"resume_id", payload.ResumeID,
			"change_type", payload.ChangeType,
			"score", score,
		)
		return nil
	}

	trigger := events.ThumbnailGenerationTriggeredPayload{
		ResumeID:    payload.ResumeID,
		UserID:      payload.UserID,
		Reason:      payload.ChangeType,
		ChangeScore: score,
		Timestamp:   time.Now().UTC(),
	}
	if err := pubsub.Publish(ctx, m.publisher, events.ThumbnailGenerationTriggered, trigger); err != nil {
		return pubsub.Retryable(fmt.Errorf("publish thumbnail trigger for %s: %w", payload.ResumeID, err))
	}
	return nil
}
