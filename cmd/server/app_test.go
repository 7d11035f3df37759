package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	usersv1 "github.com/rai/dualstack-users/api/users/v1"
	"github.com/rai/dualstack-users/internal/platform/config"
	"github.com/rai/dualstack-users/modules/users/infrastructure/persistence"
)

type testServer struct {
	addr string
	repo *persistence.InMemoryRepository
	conn *grpc.ClientConn
	stop func() error
}

func startServer(t *testing.T, writeMode string) *testServer {
	t.Helper()

	cfg := config.Config{
		WriteMode:       writeMode,
		BusCapacity:     32,
		Storage:         config.StorageMemory,
		ShutdownTimeout: 5 * time.Second,
	}
	repo := persistence.NewInMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(cfg, repo, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	stopped := false
	stop := func() error {
		if stopped {
			return nil
		}
		stopped = true
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
	t.Cleanup(func() { _ = stop() })

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testServer{addr: ln.Addr().String(), repo: repo, conn: conn, stop: stop}
}

func (s *testServer) post(t *testing.T, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post("http://"+s.addr+"/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_SyncMode_BothProtocolsShareOnePort(t *testing.T) {
	srv := startServer(t, config.WriteModeSync)
	ctx := context.Background()
	client := usersv1.NewUserServiceClient(srv.conn)

	code, body := srv.post(t, `{"username":"ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, code)
	id := body["id"]
	require.NotEmpty(t, id)

	// Written over HTTP, read over gRPC.
	got, err := client.GetUser(ctx, &usersv1.GetUserRequest{Id: id})
	require.NoError(t, err)
	assert.Equal(t, "ada", got.GetUsername())
	assert.Equal(t, "ada@example.com", got.GetEmail())

	// Written over gRPC, read over HTTP.
	_, err = client.CreateUser(ctx, &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"})
	require.NoError(t, err)

	stored := srv.repo.Users()
	require.Len(t, stored, 2)

	resp, err := http.Get("http://" + srv.addr + "/users/" + stored[1].ID().String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "grace", user["username"])

	assert.NoError(t, srv.stop())
}

func TestServer_AsyncMode_DrainsOnShutdown(t *testing.T) {
	srv := startServer(t, config.WriteModeAsync)
	client := usersv1.NewUserServiceClient(srv.conn)

	code, body := srv.post(t, `{"username":"ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "accepted", body["status"])

	_, err := client.CreateUser(context.Background(), &usersv1.CreateUserRequest{Username: "grace", Email: "grace@example.com"})
	require.NoError(t, err)

	require.NoError(t, srv.stop())

	stored := srv.repo.Users()
	require.Len(t, stored, 2)
	assert.Equal(t, "ada", stored[0].Username())
	assert.Equal(t, "grace", stored[1].Username())
	assert.Len(t, srv.repo.Events(), 2)
}

func TestServer_Health(t *testing.T) {
	srv := startServer(t, config.WriteModeAsync)

	resp, err := http.Get("http://" + srv.addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	health := healthpb.NewHealthClient(srv.conn)
	for _, service := range []string{"", usersv1.UserService_ServiceDesc.ServiceName} {
		res, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus(), "service %q", service)
	}
}

func TestServer_InvalidInput(t *testing.T) {
	srv := startServer(t, config.WriteModeAsync)

	code, _ := srv.post(t, `{"username":"ada"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	resp, err := http.Get("http://" + srv.addr + "/users/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, srv.stop())
	assert.Empty(t, srv.repo.Users())
}

func TestServer_GRPCWebIsUnsupported(t *testing.T) {
	srv := startServer(t, config.WriteModeAsync)

	resp, err := http.Post("http://"+srv.addr+usersv1.UserService_GetUser_FullMethodName, "application/grpc-web+proto", strings.NewReader(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
