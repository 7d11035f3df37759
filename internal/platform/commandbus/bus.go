// Package commandbus provides a bounded, ordered, single-consumer queue that
// decouples accepting a command from executing it.
//
// Producers call Send from any goroutine. Exactly one worker, started with
// Run, executes commands one at a time in the order they were enqueued.
// Close stops intake; Run then drains what is buffered and returns.
package commandbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCapacity is the number of commands buffered before Send blocks.
const DefaultCapacity = 32

const instrumentationName = "github.com/rai/dualstack-users/internal/platform/commandbus"

var (
	// ErrClosed is returned by Send once the bus has been closed.
	ErrClosed = errors.New("command bus is closed")

	// ErrWorkerRunning is returned by Run when a worker is already consuming the bus.
	ErrWorkerRunning = errors.New("command bus worker is already running")
)

// Handler executes one command.
type Handler[T any] interface {
	Handle(ctx context.Context, msg T) error
}

// HandlerFunc is an adapter to use ordinary functions as command handlers.
type HandlerFunc[T any] func(ctx context.Context, msg T) error

func (f HandlerFunc[T]) Handle(ctx context.Context, msg T) error {
	return f(ctx, msg)
}

// ErrorHandler is called by the worker when Handle fails. The command has
// already been acknowledged to its producer and is dropped afterwards.
type ErrorHandler[T any] func(ctx context.Context, msg T, err error)

// Bus is a bounded FIFO queue of commands with a single consumer.
type Bus[T any] struct {
	queue   chan T
	handler Handler[T]
	onError ErrorHandler[T]
	logger  *slog.Logger
	name    func(T) string

	// mu guards closing the queue against concurrent sends.
	mu      sync.RWMutex
	closed  bool
	running atomic.Bool

	tracer    trace.Tracer
	processed metric.Int64Counter
	failed    metric.Int64Counter
}

// New creates a bus that feeds handler.
func New[T any](handler Handler[T], opts ...Option[T]) *Bus[T] {
	cfg := config[T]{
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		name:     func(msg T) string { return fmt.Sprintf("%T", msg) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Bus[T]{
		queue:   make(chan T, cfg.capacity),
		handler: handler,
		logger:  cfg.logger,
		name:    cfg.name,
		tracer:  otel.Tracer(instrumentationName),
	}

	b.onError = cfg.onError
	if b.onError == nil {
		b.onError = b.logFailure
	}

	meter := otel.Meter(instrumentationName)
	// Instrument creation only fails on invalid names; the returned
	// instrument is a usable no-op in that case.
	b.processed, _ = meter.Int64Counter("commandbus.commands.processed",
		metric.WithDescription("Commands taken off the bus by the worker."))
	b.failed, _ = meter.Int64Counter("commandbus.commands.failed",
		metric.WithDescription("Commands whose handler returned an error and were dropped."))

	return b
}

// Send enqueues msg. It blocks while the bus is full and returns once the
// command is buffered. It returns ErrClosed after Close, or ctx.Err() if the
// caller gives up while waiting for room. A nil return means the worker will
// see the command; it says nothing about whether executing it succeeds.
func (b *Bus[T]) Send(ctx context.Context, msg T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	select {
	case b.queue <- msg:
		return nil
	default:
	}

	b.logger.Debug("command bus full, waiting", slog.Int("capacity", cap(b.queue)))

	select {
	case b.queue <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for command bus capacity: %w", ctx.Err())
	}
}

// Close stops intake. Commands already buffered are still delivered to the
// worker. Close blocks until producers currently waiting in Send have
// either enqueued or given up. Calling Close more than once is a no-op.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.queue)
}

// Len returns the number of buffered commands.
func (b *Bus[T]) Len() int { return len(b.queue) }

// Cap returns the bus capacity.
func (b *Bus[T]) Cap() int { return cap(b.queue) }

// Run is the worker loop. It handles commands strictly one at a time and
// returns nil once the bus is closed and drained. ctx is passed to every
// handler call; canceling it does not stop the loop, Close does.
func (b *Bus[T]) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrWorkerRunning
	}
	defer b.running.Store(false)

	b.logger.Info("command worker started", slog.Int("capacity", cap(b.queue)))

	for msg := range b.queue {
		b.process(ctx, msg)
	}

	b.logger.Info("command worker stopped")
	return nil
}

func (b *Bus[T]) process(ctx context.Context, msg T) {
	name := b.name(msg)
	attrs := attribute.String("command", name)

	ctx, span := b.tracer.Start(ctx, "commandbus.process "+name, trace.WithAttributes(attrs))
	defer span.End()

	b.processed.Add(ctx, 1, metric.WithAttributes(attrs))

	if err := b.handler.Handle(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.failed.Add(ctx, 1, metric.WithAttributes(attrs))
		b.onError(ctx, msg, err)
		return
	}

	b.logger.Debug("command processed", slog.String("command", name))
}

func (b *Bus[T]) logFailure(ctx context.Context, msg T, err error) {
	b.logger.ErrorContext(ctx, "command failed, dropping",
		slog.String("command", b.name(msg)),
		slog.Any("error", err))
}
