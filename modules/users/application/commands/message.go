package commands

import "context"

// Message is the closed set of commands the users module accepts.
// Only types in this package can implement it; adding a command kind means
// adding a variant here and a case in Dispatcher.Dispatch. The transport
// (direct call or command bus) does not change.
type Message interface {
	commandName() string
}

// CreateUserCommand represents the intent to create a new user.
// It carries no ID: the ID is assigned when the command is executed.
type CreateUserCommand struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (CreateUserCommand) commandName() string { return "users.CreateUser" }

// Name returns the command name used in logs and traces.
func Name(msg Message) string {
	if msg == nil {
		return ""
	}
	return msg.commandName()
}

// Receipt reports how far a command got before Send returned.
type Receipt struct {
	// Committed is true when the command was executed and persisted;
	// false when it was only accepted for later execution.
	Committed bool
	// UserID is set when a committed command created a user.
	UserID string
}

// Sender is the write path used by the protocol front ends.
// Dispatcher executes synchronously; QueuedSender hands the command to the
// command bus and returns once it is enqueued.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
