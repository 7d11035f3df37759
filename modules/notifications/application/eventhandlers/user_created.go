package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/shared/events/contracts"
)

// UserCreatedHandler sends a welcome notification when a user is created.
//
// It runs in the goroutine that executed the create command (the command
// bus worker in async mode), after the user and event rows are stored.
// Delivery is at most once per event ID among the most recent SeenLimit
// events handled by this process.
type UserCreatedHandler struct {
	logger *slog.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // ring of seen IDs, oldest at next
	next  int
}

// DefaultSeenLimit is the number of event IDs remembered for deduplication.
const DefaultSeenLimit = 4096

// Option configures a UserCreatedHandler.
type Option func(*UserCreatedHandler)

// WithSeenLimit sets how many event IDs are remembered. Values below 1 are
// ignored.
func WithSeenLimit(n int) Option {
	return func(h *UserCreatedHandler) {
		if n > 0 {
			h.order = make([]string, 0, n)
		}
	}
}

func NewUserCreatedHandler(logger *slog.Logger, opts ...Option) *UserCreatedHandler {
	h := &UserCreatedHandler{
		logger: logger,
		seen:   make(map[string]struct{}),
		order:  make([]string, 0, DefaultSeenLimit),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes the UserCreated event.
func (h *UserCreatedHandler) Handle(ctx context.Context, event events.Event) error {
	created, ok := event.(contracts.UserCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, contracts.UserCreatedEventType)
	}

	h.mu.Lock()
	if _, dup := h.seen[created.EventID()]; dup {
		h.mu.Unlock()
		return nil
	}
	h.remember(created.EventID())
	h.mu.Unlock()

	// Mock sending email
	h.logger.InfoContext(ctx, "sending welcome email",
		slog.String("user_id", created.UserID),
		slog.String("email", created.Email),
		slog.String("action", "welcome"))

	return nil
}

// Sent reports whether a notification was sent for eventID.
func (h *UserCreatedHandler) Sent(eventID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.seen[eventID]
	return ok
}

// remember records id, evicting the oldest ID once the ring is full.
// Callers hold h.mu.
func (h *UserCreatedHandler) remember(id string) {
	if len(h.order) < cap(h.order) {
		h.order = append(h.order, id)
	} else {
		delete(h.seen, h.order[h.next])
		h.order[h.next] = id
		h.next = (h.next + 1) % len(h.order)
	}
	h.seen[id] = struct{}{}
}
