package notifications_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rai/dualstack-users/internal/platform/eventbus"
	"github.com/rai/dualstack-users/modules/notifications"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/infrastructure/persistence"
)

func TestModule_WelcomesCreatedUsers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)

	m, err := notifications.New(notifications.Config{EventSubscriber: bus, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := persistence.NewInMemoryRepository()
	create := commands.NewCreateUserHandler(repo, bus, logger)
	if _, err := create.Handle(context.Background(), commands.CreateUserCommand{Username: "ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.Events()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	if !m.WelcomeSent(stored[0].EventID()) {
		t.Error("expected a welcome notification for the stored event")
	}
}
