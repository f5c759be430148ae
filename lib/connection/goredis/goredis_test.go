package goredis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/lib/common"
	"github.com/ValentinKolb/kvt/lib/connection"
	conntesting "github.com/ValentinKolb/kvt/lib/connection/testing"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFactory starts an in-process redis server and returns a factory talking to it
func newTestFactory(t testing.TB) (*ConnectionFactory, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:     server.Addr(),
		Protocol: 2,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewConnectionFactory(client), server
}

func TestRedisConnection(t *testing.T) {
	factory, _ := newTestFactory(t)
	conntesting.RunConnectionTests(t, "goredis", func() connection.IConnectionFactory {
		return factory
	})
}

func BenchmarkRedisConnection(b *testing.B) {
	factory, _ := newTestFactory(b)
	conntesting.RunConnectionBenchmarks(b, "goredis", func() connection.IConnectionFactory {
		return factory
	})
}

func TestNewConnectionFactoryFromConfig(t *testing.T) {
	server := miniredis.RunT(t)

	cfg := common.DefaultClientConfig()
	cfg.Endpoints = []string{server.Addr()}
	cfg.Protocol = 2
	cfg.Timeout = time.Second

	factory, err := NewConnectionFactoryFromConfig(cfg)
	require.NoError(t, err)
	defer factory.Close()

	require.NoError(t, factory.Ping(context.Background()))

	conn, err := factory.GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Set(context.Background(), []byte("k"), []byte("v")))

	got, err := server.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	cfg.Endpoints = nil
	_, err = NewConnectionFactoryFromConfig(cfg)
	assert.Error(t, err)
}

func TestHGetAllKeepsServerOrder(t *testing.T) {
	factory, server := newTestFactory(t)
	server.HSet("h", "b", "2", "a", "1", "c", "3")

	conn, _ := factory.GetConnection(context.Background())
	entries, err := conn.HGetAll(context.Background(), []byte("h"))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// miniredis replies with fields in sorted order
	assert.Equal(t, "a", string(entries[0].Key))
	assert.Equal(t, "1", string(entries[0].Value))
	assert.Equal(t, "c", string(entries[2].Key))
}

func TestServerErrorsArePropagated(t *testing.T) {
	factory, server := newTestFactory(t)
	conn, _ := factory.GetConnection(context.Background())

	server.SetError("LOADING server is loading")
	_, err := conn.LLen(context.Background(), []byte("k"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOADING")
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "1.5", formatScore(1.5))
	assert.Equal(t, "-3", formatScore(-3))
	assert.Equal(t, "+inf", formatScore(math.Inf(1)))
	assert.Equal(t, "-inf", formatScore(math.Inf(-1)))
}
