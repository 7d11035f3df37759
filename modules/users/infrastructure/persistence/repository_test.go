package persistence_test

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/spanner"
	"cloud.google.com/go/spanner/spannertest"
	"cloud.google.com/go/spanner/spansql"
	"google.golang.org/api/iterator"

	spannerclient "github.com/rai/dualstack-users/internal/platform/spanner"
	"github.com/rai/dualstack-users/modules/users/domain"
	"github.com/rai/dualstack-users/modules/users/infrastructure/persistence"
)

// runRepositoryContract exercises the behavior every UserRepository must share.
func runRepositoryContract(t *testing.T, repo domain.UserRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent user is not an error", func(t *testing.T) {
		user, found, err := repo.FindUserByID(ctx, domain.NewUserID())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found || user != nil {
			t.Fatalf("expected absence, got %+v", user)
		}
	})

	t.Run("save then find", func(t *testing.T) {
		user, err := domain.NewUser("ada", "ada@example.com")
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if err := repo.SaveUser(ctx, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		for _, event := range user.DomainEvents() {
			if err := repo.SaveEvent(ctx, event); err != nil {
				t.Fatalf("failed to save event: %v", err)
			}
		}

		got, found, err := repo.FindUserByID(ctx, user.ID())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Fatal("expected user to be found")
		}
		if got.ID() != user.ID() || got.Username() != "ada" || got.Email() != "ada@example.com" {
			t.Errorf("unexpected user: %s %s %s", got.ID(), got.Username(), got.Email())
		}
	})
}

func TestInMemoryRepository(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	runRepositoryContract(t, repo)

	if got := len(repo.Users()); got != 1 {
		t.Errorf("expected 1 stored user, got %d", got)
	}
	if got := len(repo.Events()); got != 1 {
		t.Errorf("expected 1 stored event, got %d", got)
	}
}

func TestInMemoryRepository_CanceledContext(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, _ := domain.NewUser("ada", "ada@example.com")
	if err := repo.SaveUser(ctx, user); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if len(repo.Users()) != 0 {
		t.Fatal("expected nothing to be stored")
	}
}

func TestSpannerRepository(t *testing.T) {
	client := newSpannerTestClient(t)
	repo := persistence.NewSpannerRepository(client)

	runRepositoryContract(t, repo)

	// The event log row carries the JSON encoded event.
	iter := client.Single().Read(context.Background(), "Events", spanner.AllKeys(), []string{"EventType", "AggregateID", "Payload"})
	defer iter.Stop()

	rows := 0
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			t.Fatalf("failed to read events: %v", err)
		}
		rows++

		var eventType, aggregateID, payload string
		if err := row.Columns(&eventType, &aggregateID, &payload); err != nil {
			t.Fatalf("failed to scan event: %v", err)
		}
		if eventType != domain.UserCreatedEventType.String() {
			t.Errorf("expected event type %s, got %s", domain.UserCreatedEventType, eventType)
		}

		var decoded struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if decoded.ID != aggregateID || decoded.Username != "ada" || decoded.Email != "ada@example.com" {
			t.Errorf("unexpected payload: %s", payload)
		}
	}
	if rows != 1 {
		t.Errorf("expected 1 event row, got %d", rows)
	}
}

func newSpannerTestClient(t *testing.T) *spanner.Client {
	t.Helper()

	srv, err := spannertest.NewServer("localhost:0")
	if err != nil {
		t.Fatalf("failed to start spannertest server: %v", err)
	}
	t.Cleanup(srv.Close)

	ddl, err := spansql.ParseDDL("schema.sql", persistence.Schema)
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}
	if st := srv.UpdateDDL(ddl); st != nil {
		t.Fatalf("failed to apply schema: %v", st)
	}

	client, err := spannerclient.NewClient(context.Background(), spannerclient.Config{
		ProjectID:    "test-project",
		InstanceID:   "test-instance",
		DatabaseID:   "users",
		EmulatorHost: srv.Addr,
	})
	if err != nil {
		t.Fatalf("failed to create spanner client: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}
