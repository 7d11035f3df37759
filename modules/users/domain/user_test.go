package domain_test

import (
	"testing"

	"github.com/rai/dualstack-users/modules/shared/events/contracts"
	"github.com/rai/dualstack-users/modules/users/domain"
)

func TestNewUser(t *testing.T) {
	user, err := domain.NewUser("ada", "ada@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if user.ID().IsZero() {
		t.Error("expected user to have an ID")
	}
	if user.ID().UUID().Version() != 7 {
		t.Errorf("expected UUIDv7, got version %d", user.ID().UUID().Version())
	}
	if user.Username() != "ada" {
		t.Errorf("expected username 'ada', got '%s'", user.Username())
	}
	if user.Email() != "ada@example.com" {
		t.Errorf("expected email 'ada@example.com', got '%s'", user.Email())
	}
}

func TestNewUser_RecordsCreatedEvent(t *testing.T) {
	user, err := domain.NewUser("ada", "ada@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	evts := user.DomainEvents()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	created, ok := evts[0].(contracts.UserCreatedEvent)
	if !ok {
		t.Fatalf("expected UserCreatedEvent, got %T", evts[0])
	}
	if created.UserID != user.ID().String() || created.Username != "ada" || created.Email != "ada@example.com" {
		t.Errorf("event does not mirror user: %+v", created)
	}
	if created.AggregateID() != user.ID().String() {
		t.Errorf("expected aggregate id %s, got %s", user.ID(), created.AggregateID())
	}
	if created.EventType() != domain.UserCreatedEventType {
		t.Errorf("expected event type %s, got %s", domain.UserCreatedEventType, created.EventType())
	}
}

func TestNewUser_DistinctIDs(t *testing.T) {
	first, _ := domain.NewUser("ada", "ada@example.com")
	second, _ := domain.NewUser("ada", "ada@example.com")

	if first.ID() == second.ID() {
		t.Fatal("identical commands must yield distinct IDs")
	}
	if first.ID().String() >= second.ID().String() {
		t.Errorf("expected IDs to sort by creation: %s >= %s", first.ID(), second.ID())
	}
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		wantErr  error
	}{
		{"valid", "ada", "ada@example.com", nil},
		{"format is not checked", "a", "not-an-email", nil},
		{"empty username", "", "ada@example.com", domain.ErrUsernameRequired},
		{"blank username", "   ", "ada@example.com", domain.ErrUsernameRequired},
		{"empty email", "ada", "", domain.ErrEmailRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewUser(tt.username, tt.email)
			if err != tt.wantErr {
				t.Errorf("NewUser(%q, %q) error = %v, want %v", tt.username, tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestParseUserID(t *testing.T) {
	id := domain.NewUserID()

	parsed, err := domain.ParseUserID(id.String())
	if err != nil {
		t.Fatalf("failed to parse id: %v", err)
	}
	if parsed != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := domain.ParseUserID("not-a-uuid"); err != domain.ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}
