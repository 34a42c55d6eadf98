package waitlist

import (
	"context"

	"github.com/careerloop/platform/internal/events"
	"github.com/careerloop/platform/internal/module"
	"github.com/careerloop/platform/internal/registry"
	"github.com/labstack/echo/v4"
)

// ConsumerName is the durable identity of this module's subscriptions.
// Renaming it makes the runtime treat the module as a new subscriber with
// no delivery history.
const ConsumerName = "waitlist"

// Module wires the waitlist consumer into the application.
type Module struct {
	module.BaseModule
	store      *Store
	directory  Directory
	subscriber *Subscriber
}

// New creates the waitlist module. A nil directory falls back to the
// log-backed implementation.
func New(directory Directory) *Module {
	if directory == nil {
		directory = LogDirectory{}
	}
	store := NewStore()
	return &Module{
		store:      store,
		directory:  directory,
		subscriber: NewSubscriber(store, directory),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "waitlist" }

// Store exposes the local snapshot for maintenance wiring.
func (m *Module) Store() *Store { return m.store }

// Boot binds the module's subscriptions to the delivery runtime.
func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	rt := registry.MustGet(reg, registry.RuntimeKey)

	if err := rt.Subscribe(events.UserCreated.Name(), ConsumerName, m.subscriber.HandleUserCreated); err != nil {
		return err
	}
	if err := rt.Subscribe(events.UserDeleted.Name(), ConsumerName, m.subscriber.HandleUserDeleted); err != nil {
		return err
	}
	if err := rt.Subscribe(events.WaitlistSubmitted.Name(), ConsumerName, m.subscriber.HandleWaitlistSubmitted); err != nil {
		return err
	}
	if err := rt.Subscribe(events.WaitlistLoopsSyncTriggered.Name(), ConsumerName, m.subscriber.HandleLoopsSync); err != nil {
		return err
	}
	return nil
}
