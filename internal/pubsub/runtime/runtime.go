package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/careerloop/platform/internal/pubsub"
	"go.opentelemetry.io/otel/trace"
)

// metaKeyAttempts tracks how many times a subscription's handler has been
// invoked for a message. The counter lives in message metadata so it
// survives across retries and is preserved on dead-lettered events.
const metaKeyAttempts = "attempt_count"

// metaKeyConsumer records which subscription a delivery attempt belonged to.
const metaKeyConsumer = "consumer"

// Config tunes the retry and dead-letter policy applied to every
// subscription bound to the runtime.
type Config struct {
	// MaxRetries bounds redelivery after the first failed attempt. Once
	// exceeded, the event is dead-lettered rather than retried forever.
	MaxRetries int
	// InitialBackoff is the delay before the first redelivery.
	InitialBackoff time.Duration
	// MaxBackoff caps the growth of the backoff interval.
	MaxBackoff time.Duration
	// BackoffMultiplier grows the interval between consecutive attempts.
	BackoffMultiplier float64
	// DeadLetterTopic receives events that exhausted retries or failed
	// permanently. They are preserved there for inspection, never dropped.
	DeadLetterTopic string
	// Tracer, when set, wraps every delivery attempt in a span.
	Tracer trace.Tracer
}

// DefaultConfig returns the runtime policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        5,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2,
		DeadLetterTopic:   "dead-letter",
	}
}

// Runtime delivers published events to bound subscriptions with
// at-least-once semantics. Each subscription gets its own watermill router
// handler, so one consumer's retries never block another's progress.
// Within a single (event, subscription) pair attempts are strictly
// sequential.
type Runtime struct {
	router *message.Router
	bus    *pubsub.Bus
	cfg    Config

	mu            sync.Mutex
	subscriptions map[string]string // handler name -> topic
}

// New builds a Runtime on top of the bus transport. Subscriptions must be
// bound before Run is called.
func New(bus *pubsub.Bus, cfg Config) (*Runtime, error) {
	if cfg.DeadLetterTopic == "" {
		cfg.DeadLetterTopic = DefaultConfig().DeadLetterTopic
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = DefaultConfig().BackoffMultiplier
	}

	router, err := message.NewRouter(message.RouterConfig{}, bus.Logger())
	if err != nil {
		return nil, fmt.Errorf("create delivery router: %w", err)
	}

	// Any error that survives the retry middleware (i.e. the attempt
	// ceiling was reached) parks the event on the dead-letter topic.
	exhausted, err := middleware.PoisonQueue(bus.WatermillPublisher(), cfg.DeadLetterTopic)
	if err != nil {
		return nil, fmt.Errorf("create dead-letter middleware: %w", err)
	}

	// Permanent failures skip the retry loop entirely and dead-letter on
	// the first attempt.
	permanent, err := middleware.PoisonQueueWithFilter(
		bus.WatermillPublisher(),
		cfg.DeadLetterTopic,
		pubsub.IsPermanent,
	)
	if err != nil {
		return nil, fmt.Errorf("create permanent-failure middleware: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.InitialBackoff,
		MaxInterval:     cfg.MaxBackoff,
		Multiplier:      cfg.BackoffMultiplier,
		Logger:          bus.Logger(),
	}

	// Execution order is the order of addition, outermost first:
	// tracing -> dead-letter on exhaustion -> retry with backoff ->
	// immediate dead-letter for permanent failures -> panic recovery.
	if cfg.Tracer != nil {
		router.AddMiddleware(TracingMiddleware(cfg.Tracer))
	}
	router.AddMiddleware(
		exhausted,
		retry.Middleware,
		permanent,
		middleware.Recoverer,
	)

	return &Runtime{
		router:        router,
		bus:           bus,
		cfg:           cfg,
		subscriptions: make(map[string]string),
	}, nil
}

// Subscribe binds a consumer to a topic. The (topic, consumer) pair is the
// durable identity of the subscription: its handler name in the router and
// the attribution recorded on dead-lettered events. Renaming a consumer
// makes the runtime treat it as a brand-new subscriber.
func (r *Runtime) Subscribe(topic, consumer string, handler pubsub.Handler) error {
	if topic == "" || consumer == "" {
		return fmt.Errorf("subscription needs both a topic and a consumer name")
	}

	name := consumer + "." + topic

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subscriptions[name]; exists {
		return fmt.Errorf("subscription already bound: %s", name)
	}
	r.subscriptions[name] = topic

	r.router.AddNoPublisherHandler(
		name,
		topic,
		r.bus.WatermillSubscriber(),
		r.adapt(consumer, topic, handler),
	)
	return nil
}

// adapt converts a pubsub.Handler into a watermill handler func, keeping
// the per-delivery attempt counter in message metadata.
func (r *Runtime) adapt(consumer, topic string, handler pubsub.Handler) message.NoPublishHandlerFunc {
	return func(wmMsg *message.Message) error {
		attempts := incrementAttempts(wmMsg)
		wmMsg.Metadata.Set(metaKeyConsumer, consumer)

		msg := pubsub.FromWatermillMessage(wmMsg)
		err := handler(wmMsg.Context(), msg)
		if err == nil {
			return nil
		}

		if pubsub.IsPermanent(err) {
			slog.Error("Permanent failure, dead-lettering event",
				"topic", topic,
				"consumer", consumer,
				"msg_id", wmMsg.UUID,
				"attempts", attempts,
				"error", err,
			)
			return err
		}

		slog.Warn("Retryable failure, delivery will be reattempted",
			"topic", topic,
			"consumer", consumer,
			"msg_id", wmMsg.UUID,
			"attempts", attempts,
			"error", err,
		)
		return err
	}
}

// Subscriptions returns the bound handler names keyed to their topics.
func (r *Runtime) Subscriptions() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.subscriptions))
	for name, topic := range r.subscriptions {
		out[name] = topic
	}
	return out
}

// Run starts the router and blocks until ctx is canceled or the router
// stops. All subscriptions must be bound beforehand.
func (r *Runtime) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once the router is delivering.
// Publishes issued before this point would race subscriber setup.
func (r *Runtime) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router gracefully, letting in-flight handlers finish.
func (r *Runtime) Close() error {
	return r.router.Close()
}

func incrementAttempts(wmMsg *message.Message) int {
	attempts := 1
	if raw := wmMsg.Metadata.Get(metaKeyAttempts); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			attempts = n + 1
		}
	}
	wmMsg.Metadata.Set(metaKeyAttempts, strconv.Itoa(attempts))
	return attempts
}
