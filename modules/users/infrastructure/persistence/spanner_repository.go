package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/users/domain"
)

const (
	usersTable  = "Users"
	eventsTable = "Events"
)

var (
	userColumns  = []string{"UserID", "Username", "Email"}
	eventColumns = []string{"EventID", "EventType", "AggregateID", "Payload", "OccurredAt"}
)

// SpannerRepository implements UserRepository using Cloud Spanner.
// Each Save call is its own single-use commit; the user and its events are
// not written atomically.
type SpannerRepository struct {
	client *spanner.Client
}

// NewSpannerRepository creates a new Spanner-backed user repository.
func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

// Compile-time interface check.
var _ domain.UserRepository = (*SpannerRepository)(nil)

func (r *SpannerRepository) SaveUser(ctx context.Context, user *domain.User) error {
	mutations := []*spanner.Mutation{
		spanner.Insert(usersTable, userColumns, []interface{}{
			user.ID().String(),
			user.Username(),
			user.Email(),
		}),
	}

	if _, err := r.client.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *SpannerRepository) SaveEvent(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	mutations := []*spanner.Mutation{
		spanner.Insert(eventsTable, eventColumns, []interface{}{
			event.EventID(),
			event.EventType().String(),
			event.AggregateID(),
			string(payload),
			event.OccurredAt(),
		}),
	}

	if _, err := r.client.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

func (r *SpannerRepository) FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, bool, error) {
	row, err := r.client.Single().ReadRow(ctx, usersTable, spanner.Key{id.String()}, userColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read user: %w", err)
	}

	user, err := scanUser(row)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func scanUser(row *spanner.Row) (*domain.User, error) {
	var userID, username, email string
	if err := row.Columns(&userID, &username, &email); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	id, err := domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}

	return domain.Reconstitute(id, username, email), nil
}
