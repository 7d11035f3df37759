package commands

import (
	"context"
	"fmt"

	"github.com/rai/dualstack-users/modules/users/domain"
)

// Dispatcher routes a Message to its handler and runs it in the caller's
// goroutine. It is both the synchronous Sender and the handler the command
// bus worker calls, so both write paths share the same domain logic.
type Dispatcher struct {
	createUser *CreateUserHandler
}

func NewDispatcher(createUser *CreateUserHandler) *Dispatcher {
	return &Dispatcher{createUser: createUser}
}

// Dispatch executes msg.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Receipt, error) {
	switch cmd := msg.(type) {
	case CreateUserCommand:
		id, err := d.createUser.Handle(ctx, cmd)
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{Committed: true, UserID: id.String()}, nil
	default:
		return Receipt{}, fmt.Errorf("unsupported command %T", msg)
	}
}

// Send implements Sender by executing the command synchronously.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (Receipt, error) {
	return d.Dispatch(ctx, msg)
}

// Handle adapts the dispatcher to the command bus worker.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) error {
	_, err := d.Dispatch(ctx, msg)
	return err
}

// Validate rejects commands that can never succeed, so they are not queued.
// It applies the same checks the handlers do.
func Validate(msg Message) error {
	switch cmd := msg.(type) {
	case CreateUserCommand:
		if _, _, err := domain.RequireFields(cmd.Username, cmd.Email); err != nil {
			return fmt.Errorf("invalid command: %w", err)
		}
		return nil
	case nil:
		return fmt.Errorf("command is required")
	default:
		return nil
	}
}

// Compile-time interface check.
var _ Sender = (*Dispatcher)(nil)
