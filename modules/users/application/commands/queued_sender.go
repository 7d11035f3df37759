package commands

import (
	"context"
	"fmt"
)

// Queue is the producer side of the command bus.
// *commandbus.Bus[Message] satisfies it.
type Queue interface {
	Send(ctx context.Context, msg Message) error
}

// QueuedSender is the asynchronous write path: it validates the command and
// enqueues it. The returned Receipt is never Committed; failures that happen
// later in the worker are not reported back to the caller.
type QueuedSender struct {
	queue Queue
}

func NewQueuedSender(queue Queue) *QueuedSender {
	return &QueuedSender{queue: queue}
}

// Send implements Sender.
func (s *QueuedSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := Validate(msg); err != nil {
		return Receipt{}, err
	}
	if err := s.queue.Send(ctx, msg); err != nil {
		return Receipt{}, fmt.Errorf("enqueueing %s: %w", Name(msg), err)
	}
	return Receipt{}, nil
}

// Compile-time interface check.
var _ Sender = (*QueuedSender)(nil)
