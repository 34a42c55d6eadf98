package runtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/careerloop/platform/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startRuntime builds a bus, runtime and dead-letter store wired together,
// starts delivery, and registers cleanup. Subscriptions must be bound in
// the bind callback, before the router starts.
func startRuntime(t *testing.T, cfg Config, bind func(rt *Runtime)) (*pubsub.Bus, *Runtime, *DeadLetterStore) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	bus := pubsub.NewBus()
	rt, err := New(bus, cfg)
	require.NoError(t, err)

	bind(rt)

	store := NewDeadLetterStore(16)
	require.NoError(t, store.Attach(ctx, bus, cfg.DeadLetterTopic))

	go func() {
		_ = rt.Run(ctx)
	}()
	select {
	case <-rt.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not start")
	}

	t.Cleanup(func() {
		cancel()
		_ = rt.Close()
		_ = bus.Close()
	})
	return bus, rt, store
}

func testConfig() Config {
	return Config{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
		DeadLetterTopic:   "dead-letter",
	}
}

func TestRuntimeDelivery(t *testing.T) {
	t.Run("transient failures are redelivered until the handler succeeds", func(t *testing.T) {
		var attempts atomic.Int32
		bus, _, store := startRuntime(t, testConfig(), func(rt *Runtime) {
			require.NoError(t, rt.Subscribe("orders.placed", "billing", func(ctx context.Context, msg pubsub.Message) error {
				if attempts.Add(1) < 3 {
					return pubsub.Retryable(errors.New("warehouse busy"))
				}
				return nil
			}))
		})

		require.NoError(t, bus.Publish(context.Background(), pubsub.Message{
			Topic:   "orders.placed",
			Payload: []byte(`{"order":"o-1"}`),
		}))

		assert.Eventually(t, func() bool {
			return attempts.Load() == 3
		}, 5*time.Second, 10*time.Millisecond)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("retry exhaustion dead-letters the event exactly once", func(t *testing.T) {
		var attempts atomic.Int32
		bus, _, store := startRuntime(t, testConfig(), func(rt *Runtime) {
			require.NoError(t, rt.Subscribe("orders.placed", "billing", func(ctx context.Context, msg pubsub.Message) error {
				attempts.Add(1)
				return pubsub.Retryable(errors.New("warehouse down"))
			}))
		})

		require.NoError(t, bus.Publish(context.Background(), pubsub.Message{
			Topic:   "orders.placed",
			Payload: []byte(`{"order":"o-2"}`),
		}))

		require.Eventually(t, func() bool {
			return store.Len() == 1
		}, 5*time.Second, 10*time.Millisecond)

		// First attempt plus MaxRetries redeliveries, then parked.
		assert.Equal(t, int32(3), attempts.Load())

		entry := store.List()[0]
		assert.Equal(t, "orders.placed", entry.Topic)
		assert.Equal(t, "billing", entry.Consumer)
		assert.Equal(t, 3, entry.Attempts)
		assert.Contains(t, entry.Reason, "warehouse down")
		assert.JSONEq(t, `{"order":"o-2"}`, string(entry.Payload))

		// The dead letter is terminal: no further redelivery happens.
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(3), attempts.Load())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("permanent failures dead-letter without any retry", func(t *testing.T) {
		var attempts atomic.Int32
		bus, _, store := startRuntime(t, testConfig(), func(rt *Runtime) {
			require.NoError(t, rt.Subscribe("orders.placed", "billing", func(ctx context.Context, msg pubsub.Message) error {
				attempts.Add(1)
				return pubsub.Permanent(errors.New("unparseable payload"))
			}))
		})

		require.NoError(t, bus.Publish(context.Background(), pubsub.Message{
			Topic:   "orders.placed",
			Payload: []byte(`not json`),
		}))

		require.Eventually(t, func() bool {
			return store.Len() == 1
		}, 5*time.Second, 10*time.Millisecond)

		assert.Equal(t, int32(1), attempts.Load())
		entry := store.List()[0]
		assert.Equal(t, 1, entry.Attempts)
		assert.Contains(t, entry.Reason, "unparseable payload")
	})

	t.Run("one consumer's failure does not disturb the others", func(t *testing.T) {
		var healthy, failing atomic.Int32
		bus, _, store := startRuntime(t, testConfig(), func(rt *Runtime) {
			require.NoError(t, rt.Subscribe("orders.placed", "billing", func(ctx context.Context, msg pubsub.Message) error {
				healthy.Add(1)
				return nil
			}))
			require.NoError(t, rt.Subscribe("orders.placed", "shipping", func(ctx context.Context, msg pubsub.Message) error {
				failing.Add(1)
				return pubsub.Permanent(errors.New("no carrier"))
			}))
		})

		require.NoError(t, bus.Publish(context.Background(), pubsub.Message{
			Topic:   "orders.placed",
			Payload: []byte(`{"order":"o-3"}`),
		}))

		require.Eventually(t, func() bool {
			return healthy.Load() == 1 && store.Len() == 1
		}, 5*time.Second, 10*time.Millisecond)

		// Only the failing subscription is attributed on the dead letter.
		entry := store.List()[0]
		assert.Equal(t, "shipping", entry.Consumer)
		assert.Equal(t, int32(1), failing.Load())
	})

	t.Run("duplicate subscriptions are rejected", func(t *testing.T) {
		bus := pubsub.NewBus()
		t.Cleanup(func() { _ = bus.Close() })

		rt, err := New(bus, testConfig())
		require.NoError(t, err)

		noop := func(ctx context.Context, msg pubsub.Message) error { return nil }
		require.NoError(t, rt.Subscribe("orders.placed", "billing", noop))
		assert.Error(t, rt.Subscribe("orders.placed", "billing", noop))
		assert.Error(t, rt.Subscribe("", "billing", noop))
		assert.Error(t, rt.Subscribe("orders.placed", "", noop))
	})
}

func TestDeadLetterStore(t *testing.T) {
	t.Run("retention is bounded to the newest entries", func(t *testing.T) {
		store := NewDeadLetterStore(2)
		for i := 0; i < 5; i++ {
			require.NoError(t, store.record(context.Background(), pubsub.Message{
				Topic:   "orders.placed",
				Payload: []byte(`{}`),
			}))
		}
		assert.Equal(t, 2, store.Len())
	})

	t.Run("clearing an empty store succeeds", func(t *testing.T) {
		store := NewDeadLetterStore(4)
		assert.Equal(t, "dead-letters", store.Name())
		assert.NoError(t, store.ClearData(context.Background()))
		assert.Equal(t, 0, store.Len())
	})
}
