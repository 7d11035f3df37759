// Package eventbus provides an in-memory event bus for inter-module communication.
// The event log written by each module's repository is the durable record;
// this bus only fans events out to subscribers in the same process.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rai/dualstack-users/modules/shared/events"
)

// InMemoryEventBus implements a simple synchronous event bus.
// Events are delivered in the publisher's goroutine, in subscription order.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]events.Handler
	logger   *slog.Logger
}

func New(logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		handlers: make(map[events.EventType][]events.Handler),
		logger:   logger,
	}
}

// Compile-time interface checks.
var (
	_ events.Publisher  = (*InMemoryEventBus)(nil)
	_ events.Subscriber = (*InMemoryEventBus)(nil)
)

// Publish implements events.Publisher.
// A failing handler is logged and does not stop delivery to the others.
func (b *InMemoryEventBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.RLock()
	handlers := append([]events.Handler(nil), b.handlers[event.EventType()]...)
	b.mu.RUnlock()

	b.logger.DebugContext(ctx, "publishing event",
		slog.String("event_type", event.EventType().String()),
		slog.String("event_id", event.EventID()),
		slog.Int("handler_count", len(handlers)))

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				slog.String("event_type", event.EventType().String()),
				slog.String("event_id", event.EventID()),
				slog.Any("error", err))
		}
	}

	return nil
}

// Subscribe implements events.Subscriber.
func (b *InMemoryEventBus) Subscribe(eventType events.EventType, handler events.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed to event", slog.String("event_type", eventType.String()))

	return nil
}

// HandlerFunc is an adapter to use ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event events.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}
