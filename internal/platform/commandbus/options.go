package commandbus

import "log/slog"

type config[T any] struct {
	capacity int
	logger   *slog.Logger
	onError  ErrorHandler[T]
	name     func(T) string
}

// Option configures a Bus.
type Option[T any] func(*config[T])

// WithCapacity sets how many commands are buffered before Send blocks.
// Values below 1 are ignored.
func WithCapacity[T any](capacity int) Option[T] {
	return func(c *config[T]) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithLogger sets the logger used by the worker.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *config[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithErrorHandler replaces the default failure policy, which logs the
// error and drops the command.
func WithErrorHandler[T any](fn ErrorHandler[T]) Option[T] {
	return func(c *config[T]) {
		c.onError = fn
	}
}

// WithNamer sets how commands are named in logs, spans and metrics.
func WithNamer[T any](fn func(T) string) Option[T] {
	return func(c *config[T]) {
		if fn != nil {
			c.name = fn
		}
	}
}
