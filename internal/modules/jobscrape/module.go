package jobscrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/module"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/careerloop/platform/internal/registry"
	"github.com/labstack/echo/v4"
)

// ConsumerName is the durable identity of this module's subscriptions.
const ConsumerName = "jobscrape"

// Module tracks the lifecycle of job-posting scrape processes.
type Module struct {
	module.BaseModule
	ledger *Ledger
}

// New creates the jobscrape module.
func New() *Module {
	return &Module{ledger: NewLedger()}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "jobscrape" }

// Ledger exposes the process ledger for maintenance wiring.
func (m *Module) Ledger() *Ledger { return m.ledger }

// Boot binds the module's subscriptions to the delivery runtime.
func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	rt := registry.MustGet(reg, registry.RuntimeKey)

	if err := rt.Subscribe(events.JobScrapeTriggered.Name(), ConsumerName, m.handleTriggered); err != nil {
		return err
	}
	if err := rt.Subscribe(events.JobScrapeSuccess.Name(), ConsumerName, m.handleSuccess); err != nil {
		return err
	}
	if err := rt.Subscribe(events.JobScrapeFailed.Name(), ConsumerName, m.handleFailed); err != nil {
		return err
	}
	return nil
}

func (m *Module) handleTriggered(ctx context.Context, msg pubsub.Message) error {
	var payload events.JobScrapeTriggeredPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal job-scrape-triggered payload: %w", err))
	}

	m.ledger.MarkTriggered(payload.ProcessID, payload.JobID, payload.JobURL, payload.TriggeredAt)
	return nil
}

func (m *Module) handleSuccess(ctx context.Context, msg pubsub.Message) error {
	var payload events.JobScrapeSuccessPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal job-scrape-success payload: %w", err))
	}

	m.ledger.MarkSucceeded(payload.ProcessID, payload.JobID, payload.JobURL, payload.CompletedAt)
	slog.Info("Job scrape completed", "job_id", payload.JobID, "process_id", payload.ProcessID)
	return nil
}

func (m *Module) handleFailed(ctx context.Context, msg pubsub.Message) error {
	var payload events.JobScrapeFailedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return pubsub.Permanent(fmt.Errorf("unmarshal job-scrape-failed payload: %w", err))
	}

	m.ledger.MarkFailed(payload.ProcessID, payload.JobID, payload.ErrorMessage, payload.FailedAt)
	slog.Warn("Job scrape failed", "job_id", payload.JobID, "process_id", payload.ProcessID, "error", payload.ErrorMessage)
	return nil
}
