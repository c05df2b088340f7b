package state

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

// TestStateManagerOperations verifies the Redis-backed manager against a real server.
func TestStateManagerOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	var manager *RedisManager

	cfg := RedisConfig{
		Host:      host,
		Port:      port,
		Namespace: "cip_test",
	}

	app := fx.New(
		FXModule,
		fx.Provide(
			func() RedisConfig { return cfg },
		),
		fx.Populate(&manager),
	)

	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	t.Run("Set and Get", func(t *testing.T) {
		err := manager.Set(ctx, KeyActiveRunID, "17", 0)
		require.NoError(t, err)

		value, err := manager.Get(ctx, KeyActiveRunID)
		require.NoError(t, err)
		assert.Equal(t, "17", value)
	})

	t.Run("Get missing key", func(t *testing.T) {
		_, err := manager.Get(ctx, "no-such-key")
		assert.True(t, IsKeyNotFound(err))
	})

	t.Run("UpdateChanges", func(t *testing.T) {
		changed, err := manager.UpdateChanges(ctx, KeyGatewayOnline, "1")
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = manager.UpdateChanges(ctx, KeyGatewayOnline, "1")
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = manager.UpdateChanges(ctx, KeyGatewayOnline, "0")
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("Increment and Decrement", func(t *testing.T) {
		value, err := manager.Increment(ctx, KeyMessageCount, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)

		value, err = manager.Increment(ctx, KeyMessageCount, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(6), value)

		value, err = manager.Decrement(ctx, KeyMessageCount, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(4), value)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, manager.Set(ctx, "delete-key", "value", 0))

		removed, err := manager.Delete(ctx, "delete-key", "missing-key")
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		exists, err := manager.Exists(ctx, "delete-key")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("TTL expiry", func(t *testing.T) {
		require.NoError(t, manager.Set(ctx, "expiring-key", "value", 2*time.Second))

		exists, err := manager.Exists(ctx, "expiring-key")
		require.NoError(t, err)
		assert.True(t, exists)

		time.Sleep(3 * time.Second)

		exists, err = manager.Exists(ctx, "expiring-key")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("JSON round trip", func(t *testing.T) {
		type runMarker struct {
			ID      int64  `json:"id"`
			Station string `json:"station"`
		}

		in := runMarker{ID: 9, Station: "st-02"}
		require.NoError(t, manager.SetJSON(ctx, "run:marker", in, 5*time.Minute))

		var out runMarker
		require.NoError(t, manager.GetJSON(ctx, "run:marker", &out))
		assert.Equal(t, in, out)
	})
}

// TestStateNamespaceIsolation verifies GetAll and Clear only touch the manager's namespace.
func TestStateNamespaceIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	managerA, err := NewRedisManager(RedisConfig{Host: host, Port: port, Namespace: "cip_a"})
	require.NoError(t, err)
	defer managerA.Close()

	managerB, err := NewRedisManager(RedisConfig{Host: host, Port: port, Namespace: "cip_b"})
	require.NoError(t, err)
	defer managerB.Close()

	require.NoError(t, managerA.Set(ctx, "k1", "a1", 0))
	require.NoError(t, managerA.Set(ctx, "k2", "a2", 0))
	require.NoError(t, managerB.Set(ctx, "k1", "b1", 0))

	t.Run("GetAll is scoped", func(t *testing.T) {
		all, err := managerA.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"k1": "a1", "k2": "a2"}, all)
	})

	t.Run("Clear leaves other namespaces alone", func(t *testing.T) {
		require.NoError(t, managerA.Clear(ctx))

		all, err := managerA.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		value, err := managerB.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "b1", value)
	})
}

// TestStateQueue verifies FIFO queue semantics over Redis lists.
func TestStateQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	manager, err := NewRedisManager(RedisConfig{Host: host, Port: port, Namespace: "cip_queue"})
	require.NoError(t, err)
	defer manager.Close()

	queue := NewQueue(manager, "raw")

	t.Run("Push and Pop preserve order", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, "first"))
		require.NoError(t, queue.Push(ctx, "second"))
		require.NoError(t, queue.Push(ctx, "third"))

		length, err := queue.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), length)

		for _, want := range []string{"first", "second", "third"} {
			got, err := queue.Pop(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Pop on empty queue", func(t *testing.T) {
		_, err := queue.Pop(ctx)
		assert.ErrorIs(t, err, ErrQueueEmpty)
	})

	t.Run("PopBlocking waits for a message", func(t *testing.T) {
		go func() {
			time.Sleep(200 * time.Millisecond)
			_ = queue.Push(context.Background(), "late")
		}()

		got, err := queue.PopBlocking(ctx, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "late", got)
	})

	t.Run("PopBlocking times out", func(t *testing.T) {
		_, err := queue.PopBlocking(ctx, time.Second)
		assert.ErrorIs(t, err, ErrQueueEmpty)
	})

	t.Run("Range peeks without removing", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, "a"))
		require.NoError(t, queue.Push(ctx, "b"))

		messages, err := queue.Range(ctx, 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, messages)

		length, err := queue.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), length)
	})

	t.Run("Clear empties the queue", func(t *testing.T) {
		require.NoError(t, queue.Clear(ctx))

		length, err := queue.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), length)
	})
}

// Helper functions

func initializeRedis(ctx context.Context, t *testing.T) (string, int, testcontainers.Container) {
	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createRedisContainer(ctx, hostPort)
	require.NoError(t, err)

	port, err := containerInstance.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	// Wait for Redis to be ready
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port.Port()), 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "Redis port not ready")

	return host, port.Int(), containerInstance
}

func createRedisContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"6379/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image: "redis:7-alpine",
		ExposedPorts: []string{
			"6379/tcp",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			return containerInstance, nil
		}

		if strings.Contains(lastErr.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}

		break
	}

	return nil, fmt.Errorf("failed to start Redis container after 3 attempts: %w", lastErr)
}

func getFreePort() (string, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	addr := l.Addr().(*net.TCPAddr)
	return strconv.Itoa(addr.Port), nil
}
