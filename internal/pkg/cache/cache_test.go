package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()

	var got payload
	found, err := c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", payload{Name: "clubs", Count: 3}, time.Minute))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "clubs", Count: 3}, got)

	require.NoError(t, c.Delete(ctx, "k"))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseCache(t, m)

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(context.Background(), "ttl", 1, time.Second))
	m.now = func() time.Time { return now.Add(2 * time.Second) }

	var v int
	found, err := m.Get(context.Background(), "ttl", &v)
	require.NoError(t, err)
	assert.False(t, found, "expired entries are misses")
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Minute))
	found, err := c.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache(t *testing.T) {
	if os.Getenv("CLUBHUB_INTEGRATION") != "1" {
		t.Skip("set CLUBHUB_INTEGRATION=1 to run Redis integration tests")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	c, err := NewRedisCache(fmt.Sprintf("%s:%s", host, port.Port()), "", 0, "clubhub-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	exerciseCache(t, c)
}
