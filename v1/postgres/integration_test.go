package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cipworks/common/v1/dbclient"
)

// postgresContainer represents a Postgres container for testing
type postgresContainer struct {
	testcontainers.Container
	Config           Config
	ConnectionString string
}

// setupPostgresContainer sets up a Postgres container for testing
func setupPostgresContainer(ctx context.Context) (*postgresContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable",
		host, mappedPort.Port())
	if err := waitForPostgresReady(connStr, 30*time.Second); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("postgres container not ready: %w", err)
	}

	cfg := Config{
		Connection: Connection{
			Host:     host,
			Port:     mappedPort.Int(),
			User:     "testuser",
			Password: "testpass",
			DbName:   "testdb",
			SSLMode:  "disable",
		},
		Pool: PoolSettings{MinConns: 1, MaxConns: 3},
	}

	return &postgresContainer{
		Container:        pgContainer,
		Config:           cfg,
		ConnectionString: connStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = addr.Close() }()
	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForPostgresReady polls the server with lib/pq until it accepts queries.
func waitForPostgresReady(connStr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		db, err := sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("postgres did not become ready within %s", timeout)
}

// TestPostgresClientRoundTrip exercises the full client against a real
// server and cross-checks the effects with a raw lib/pq connection.
func TestPostgresClientRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pg, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	reg := NewRegistry()
	db, err := reg.NewClient(ctx, pg.Config)
	require.NoError(t, err)
	defer reg.CloseAll(ctx)

	_, err = db.ExecuteNonQuery(ctx, `
		CREATE TABLE public.run (
			id BIGSERIAL PRIMARY KEY,
			station TEXT NOT NULL,
			is_online BOOLEAN NOT NULL DEFAULT TRUE,
			ts TIMESTAMP WITHOUT TIME ZONE
		)`, nil)
	require.NoError(t, err)

	t.Run("insert returning yields generated id", func(t *testing.T) {
		generated, err := db.ExecuteNonQueryReturning(ctx,
			"INSERT INTO public.run (station, ts) VALUES (%s, %s) RETURNING id",
			[]dbclient.Param{
				dbclient.Text("st-01"),
				dbclient.Timestamp(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)),
			})
		require.NoError(t, err)
		assert.EqualValues(t, 1, generated)
	})

	t.Run("select returns map rows", func(t *testing.T) {
		rows, err := db.ExecuteQuery(ctx,
			"SELECT id, station, is_online FROM public.run WHERE station = %s",
			[]dbclient.Param{dbclient.Text("st-01")})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 1, rows[0]["id"])
		assert.Equal(t, "st-01", rows[0]["station"])
		assert.Equal(t, true, rows[0]["is_online"])
	})

	t.Run("non-query reports affected rows", func(t *testing.T) {
		affected, err := db.ExecuteNonQuery(ctx,
			"UPDATE public.run SET is_online = %s WHERE station = %s",
			[]dbclient.Param{dbclient.Bool(false), dbclient.Text("st-01")})
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)
	})

	t.Run("auto-mode commit is visible to an independent connection", func(t *testing.T) {
		raw, err := sql.Open("postgres", pg.ConnectionString)
		require.NoError(t, err)
		defer raw.Close()

		var station string
		var online bool
		err = raw.QueryRow("SELECT station, is_online FROM public.run WHERE id = 1").Scan(&station, &online)
		require.NoError(t, err)
		assert.Equal(t, "st-01", station)
		assert.False(t, online)
	})

	t.Run("held connection runs multiple statements", func(t *testing.T) {
		require.NoError(t, db.Connect(ctx))
		defer func() { _ = db.Close() }()

		for i := 0; i < 3; i++ {
			_, err := db.ExecuteNonQuery(ctx,
				"INSERT INTO public.run (station) VALUES (%s)",
				[]dbclient.Param{dbclient.Text(fmt.Sprintf("st-%02d", i+2))},
				dbclient.WithHeldConnection())
			require.NoError(t, err)
		}

		rows, err := db.ExecuteQuery(ctx, "SELECT count(*) AS n FROM public.run", nil,
			dbclient.WithHeldConnection())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 4, rows[0]["n"])
	})

	t.Run("failed statement rolls back and releases", func(t *testing.T) {
		_, err := db.ExecuteNonQuery(ctx, "UPDATE public.run SET no_such_column = 1", nil)
		require.Error(t, err)
		assert.True(t, dbclient.IsQueryExecution(err))

		stats := db.Stats()
		assert.Zero(t, stats.Borrowed)

		// The pool is still usable after the failure.
		_, err = db.ExecuteQuery(ctx, "SELECT 1 AS one", nil)
		assert.NoError(t, err)
	})
}

// TestPostgresPoolExhaustionAgainstServer verifies the fail-fast bound with
// real connections.
func TestPostgresPoolExhaustionAgainstServer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pg, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = pg.Terminate(ctx) }()

	cfg := pg.Config
	cfg.Pool = PoolSettings{MinConns: 1, MaxConns: 1}

	reg := NewRegistry()
	a, err := reg.NewClient(ctx, cfg)
	require.NoError(t, err)
	defer reg.CloseAll(ctx)

	forced := cfg
	forced.ForceNew = true
	b, err := reg.NewClient(ctx, forced)
	require.NoError(t, err)

	// One handle pins the single connection; the other must fail fast.
	require.NoError(t, a.Connect(ctx))

	_, err = b.ExecuteQuery(ctx, "SELECT 1 AS one", nil)
	assert.True(t, dbclient.IsPoolExhausted(err), "auto-mode call on an exhausted pool should fail fast")

	// The connected handle keeps working over its held connection.
	_, err = a.ExecuteQuery(ctx, "SELECT 1 AS one", nil)
	assert.NoError(t, err)

	require.NoError(t, a.Close())
	_, err = b.ExecuteQuery(ctx, "SELECT 1 AS one", nil)
	assert.NoError(t, err, "pool should recover after the held connection is released")
}
