package rpc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	usersv1 "github.com/rai/dualstack-users/api/users/v1"
	"github.com/rai/dualstack-users/internal/platform/commandbus"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/application/queries"
	"github.com/rai/dualstack-users/modules/users/domain"
	"github.com/rai/dualstack-users/modules/users/domain/mock"
	"github.com/rai/dualstack-users/modules/users/infrastructure/persistence"
	"github.com/rai/dualstack-users/modules/users/infrastructure/rpc"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClient(t *testing.T, sender commands.Sender, repo domain.UserRepository) usersv1.UserServiceClient {
	t.Helper()
	return usersv1.NewUserServiceClient(newConn(t, sender, repo))
}

func newConn(t *testing.T, sender commands.Sender, repo domain.UserRepository) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	usersv1.RegisterUserServiceServer(srv, rpc.NewServer(sender, queries.NewGetUserHandler(repo), discard))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func newDispatcher(repo domain.UserRepository) *commands.Dispatcher {
	return commands.NewDispatcher(commands.NewCreateUserHandler(repo, nil, discard))
}

func TestServer_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryRepository()
	client := newClient(t, newDispatcher(repo), repo)

	_, err := client.CreateUser(ctx, &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"})
	require.NoError(t, err)

	stored := repo.Users()
	require.Len(t, stored, 1)
	id := stored[0].ID().String()

	got, err := client.GetUser(ctx, &usersv1.GetUserRequest{Id: id})
	require.NoError(t, err)
	assert.Equal(t, id, got.GetId())
	assert.Equal(t, "grace", got.GetUsername())
	assert.Equal(t, "grace@example.com", got.GetEmail())
}

func TestServer_CreateUser_Queued(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInMemoryRepository()
	bus := commandbus.New[commands.Message](newDispatcher(repo), commandbus.WithLogger[commands.Message](discard))
	client := newClient(t, commands.NewQueuedSender(bus), repo)

	_, err := client.CreateUser(ctx, &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Len())
	assert.Empty(t, repo.Users(), "queued command must not run before the worker")

	bus.Close()
	require.NoError(t, bus.Run(ctx))
	assert.Len(t, repo.Users(), 1)
}

func TestServer_CreateUser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      *usersv1.CreateUserRequest
		setup    func(repo *mock.MockUserRepository)
		wantCode codes.Code
	}{
		{
			name:     "missing username",
			req:      &usersv1.CreateUserRequest{Email: "grace@example.com"},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "missing email",
			req:      &usersv1.CreateUserRequest{Username: "grace"},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "storage failure",
			req:  &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"},
			setup: func(repo *mock.MockUserRepository) {
				repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("spanner unavailable"))
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockUserRepository(ctrl)
			if tt.setup != nil {
				tt.setup(repo)
			}
			client := newClient(t, newDispatcher(repo), repo)

			_, err := client.CreateUser(context.Background(), tt.req)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

// A client without the generated stubs sends plain protobuf; an empty
// message decodes to a request with no fields.
func TestServer_CreateUser_GenericProtobufClient(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	conn := newConn(t, newDispatcher(repo), repo)

	err := conn.Invoke(context.Background(), usersv1.UserService_CreateUser_FullMethodName, &emptypb.Empty{}, &emptypb.Empty{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, repo.Users())
}

func TestServer_CreateUser_BusClosed(t *testing.T) {
	bus := commandbus.New[commands.Message](commandbus.HandlerFunc[commands.Message](
		func(ctx context.Context, msg commands.Message) error { return nil }),
		commandbus.WithLogger[commands.Message](discard))
	bus.Close()
	client := newClient(t, commands.NewQueuedSender(bus), persistence.NewInMemoryRepository())

	_, err := client.CreateUser(context.Background(), &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestServer_GetUser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		setup    func(repo *mock.MockUserRepository)
		wantCode codes.Code
	}{
		{
			name:     "malformed id",
			id:       "not-a-uuid",
			wantCode: codes.InvalidArgument,
		},
		{
			name: "absent",
			id:   domain.NewUserID().String(),
			setup: func(repo *mock.MockUserRepository) {
				repo.EXPECT().FindUserByID(gomock.Any(), gomock.Any()).Return(nil, false, nil)
			},
			wantCode: codes.NotFound,
		},
		{
			name: "storage failure",
			id:   domain.NewUserID().String(),
			setup: func(repo *mock.MockUserRepository) {
				repo.EXPECT().FindUserByID(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("spanner unavailable"))
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockUserRepository(ctrl)
			if tt.setup != nil {
				tt.setup(repo)
			}
			client := newClient(t, newDispatcher(repo), repo)

			_, err := client.GetUser(context.Background(), &usersv1.GetUserRequest{Id: tt.id})
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}
