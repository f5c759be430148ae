package memory

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	conntesting "github.com/ValentinKolb/kvt/lib/connection/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConnection(t *testing.T) {
	conntesting.RunConnectionTests(t, "memory", func() connection.IConnectionFactory {
		return NewConnectionFactory()
	})
}

func BenchmarkMemoryConnection(b *testing.B) {
	conntesting.RunConnectionBenchmarks(b, "memory", func() connection.IConnectionFactory {
		return NewConnectionFactory()
	})
}

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name        string
		start, stop int64
		n           int
		from, to    int
		ok          bool
	}{
		{"All", 0, -1, 5, 0, 4, true},
		{"Tail", -2, -1, 5, 3, 4, true},
		{"ClampStop", 1, 100, 5, 1, 4, true},
		{"ClampStart", -100, 1, 5, 0, 1, true},
		{"StartAfterStop", 3, 1, 5, 0, 0, false},
		{"StartBeyondEnd", 5, 10, 5, 0, 0, false},
		{"Empty", 0, -1, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := normalizeRange(tt.start, tt.stop, tt.n)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.from, from)
				assert.Equal(t, tt.to, to)
			}
		})
	}
}

func TestCloseTwice(t *testing.T) {
	conn, err := NewConnectionFactory().GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Close(), connection.ErrClosed)
}

func TestCommandsAfterClose(t *testing.T) {
	ctx := context.Background()
	factory := NewConnectionFactory()
	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Set(ctx, []byte("k"), []byte("v")))
	require.NoError(t, conn.Close())

	assert.ErrorIs(t, conn.Set(ctx, []byte("k"), []byte("w")), connection.ErrClosed)
	_, err = conn.Get(ctx, []byte("k"))
	assert.ErrorIs(t, err, connection.ErrClosed)
	_, err = conn.RPush(ctx, []byte("l"), []byte("a"))
	assert.ErrorIs(t, err, connection.ErrClosed)
	_, err = conn.Del(ctx, []byte("k"))
	assert.ErrorIs(t, err, connection.ErrClosed)
	_, err = conn.MGet(ctx, []byte("k"))
	assert.ErrorIs(t, err, connection.ErrClosed)

	// the keyspace itself is untouched
	other, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	defer other.Close()
	v, err := other.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 1, factory.DBSize())
}

func TestGetConnectionCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewConnectionFactory().GetConnection(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrongTypeError(t *testing.T) {
	ctx := context.Background()
	conn, _ := NewConnectionFactory().GetConnection(ctx)

	require.NoError(t, conn.Set(ctx, []byte("k"), []byte("v")))
	_, err := conn.LPush(ctx, []byte("k"), []byte("x"))

	var connErr *connection.Error
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, connection.RetCWrongType, connErr.Code)
	assert.Contains(t, err.Error(), "WrongType")
}

func TestBlockingPopContext(t *testing.T) {
	conn, _ := NewConnectionFactory().GetConnection(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// timeout 0 blocks until ctx is done
	v, err := conn.BLPop(ctx, 0, []byte("never"))
	assert.Nil(t, v)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBlockingPopConcurrent(t *testing.T) {
	const producers, perProducer = 4, 50
	factory := NewConnectionFactory()
	key := []byte("queue")

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, _ := factory.GetConnection(context.Background())
			defer conn.Close()
			for i := 0; i < perProducer; i++ {
				_, _ = conn.RPush(context.Background(), key, []byte{byte(i)})
			}
		}()
	}

	conn, _ := factory.GetConnection(context.Background())
	received := 0
	for received < producers*perProducer {
		v, err := conn.BLPop(context.Background(), 5, key)
		require.NoError(t, err)
		require.NotNil(t, v)
		received++
	}
	wg.Wait()

	n, err := conn.LLen(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func populate(t *testing.T, factory *ConnectionFactory) {
	ctx := context.Background()
	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Set(ctx, []byte("str"), []byte("value")))
	_, err = conn.RPush(ctx, []byte("list"), []byte("a"), []byte("b"))
	require.NoError(t, err)
	_, err = conn.SAdd(ctx, []byte("set"), []byte("x"), []byte("y"))
	require.NoError(t, err)
	require.NoError(t, conn.HMSet(ctx, []byte("hash"), []connection.RawEntry{
		{Key: []byte("f2"), Value: []byte("2")},
		{Key: []byte("f1"), Value: []byte("1")},
	}))
	_, err = conn.ZAdd(ctx, []byte("zset"), 1.5, []byte("m"))
	require.NoError(t, err)
}

func verifyPopulated(t *testing.T, factory *ConnectionFactory) {
	ctx := context.Background()
	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, 5, factory.DBSize())

	v, err := conn.Get(ctx, []byte("str"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	list, err := conn.LRange(ctx, []byte("list"), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, list)

	members, err := conn.SMembers(ctx, []byte("set"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x"), []byte("y")}, members)

	// hash field order survives the snapshot
	entries, err := conn.HGetAll(ctx, []byte("hash"))
	require.NoError(t, err)
	assert.Equal(t, []connection.RawEntry{
		{Key: []byte("f2"), Value: []byte("2")},
		{Key: []byte("f1"), Value: []byte("1")},
	}, entries)

	score, ok, err := conn.ZScore(ctx, []byte("zset"), []byte("m"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, score)
}

func TestSaveLoad(t *testing.T) {
	original := NewConnectionFactory()
	populate(t, original)

	var buf bytes.Buffer
	require.NoError(t, original.Save(&buf))

	restored := NewConnectionFactory()
	require.NoError(t, restored.Load(bytes.NewReader(buf.Bytes())))
	verifyPopulated(t, restored)
}

func TestLoadInvalid(t *testing.T) {
	f := NewConnectionFactory()
	assert.Error(t, f.Load(bytes.NewReader([]byte("NOTASNAPSHOT"))))
	assert.Error(t, f.Load(bytes.NewReader([]byte(magicNum+"\x07"))))
	assert.Error(t, f.Load(bytes.NewReader(nil)))
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvt.snapshot")

	// a missing file is not an error
	empty := NewConnectionFactory()
	require.NoError(t, empty.LoadFile(path))
	assert.Equal(t, 0, empty.DBSize())

	original := NewConnectionFactory()
	populate(t, original)
	require.NoError(t, original.SaveFile(path))

	restored := NewConnectionFactory()
	require.NoError(t, restored.LoadFile(path))
	verifyPopulated(t, restored)

	restored.FlushAll()
	assert.Equal(t, 0, restored.DBSize())
}
