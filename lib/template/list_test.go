package template

import (
	"context"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/ValentinKolb/kvt/lib/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOperations(t *testing.T) {
	ctx := context.Background()
	list := newIntTemplate(memory.NewConnectionFactory()).OpsForList()

	t.Run("PushAndPop", func(t *testing.T) {
		n, err := list.LeftPush(ctx, "pp", 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = list.RightPush(ctx, "pp", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		values, err := list.Range(ctx, "pp", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, values)

		v, ok, err := list.LeftPop(ctx, "pp")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		v, ok, err = list.RightPop(ctx, "pp")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, v)

		size, err := list.Size(ctx, "pp")
		require.NoError(t, err)
		assert.Equal(t, int64(1), size)
	})

	t.Run("PopMissing", func(t *testing.T) {
		v, ok, err := list.LeftPop(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, v)

		_, ok, err = list.RightPop(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("PushIfPresent", func(t *testing.T) {
		n, err := list.LeftPushIfPresent(ctx, "absent", 1)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = list.RightPushIfPresent(ctx, "absent", 1)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = list.RightPush(ctx, "present", 1)
		require.NoError(t, err)
		n, err = list.LeftPushIfPresent(ctx, "present", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = list.RightPushIfPresent(ctx, "present", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("Insert", func(t *testing.T) {
		_, err := list.RightPush(ctx, "ins", 1, 3)
		require.NoError(t, err)

		n, err := list.LeftPushBefore(ctx, "ins", 3, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		n, err = list.RightPushAfter(ctx, "ins", 3, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		n, err = list.RightPushAfter(ctx, "ins", 99, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), n)

		values, err := list.Range(ctx, "ins", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, values)
	})

	t.Run("IndexSetTrimRemove", func(t *testing.T) {
		_, err := list.RightPush(ctx, "edit", 1, 2, 1, 3, 1)
		require.NoError(t, err)

		v, ok, err := list.Index(ctx, "edit", -2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, v)

		_, ok, err = list.Index(ctx, "edit", 10)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, list.Set(ctx, "edit", 1, 20))
		assert.ErrorIs(t, list.Set(ctx, "edit", 10, 0), connection.ErrOutOfRange)

		n, err := list.Remove(ctx, "edit", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		require.NoError(t, list.Trim(ctx, "edit", 0, 0))
		values, err := list.Range(ctx, "edit", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []int{20}, values)
	})

	t.Run("RightPopAndLeftPush", func(t *testing.T) {
		_, err := list.RightPush(ctx, "src", 1, 2)
		require.NoError(t, err)

		v, ok, err := list.RightPopAndLeftPush(ctx, "src", "dst")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, v)

		v, ok, err = list.BlockingRightPopAndLeftPush(ctx, "src", "dst", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		values, err := list.Range(ctx, "dst", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, values)

		_, ok, err = list.RightPopAndLeftPush(ctx, "src", "dst")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RangeMissing", func(t *testing.T) {
		values, err := list.Range(ctx, "missing", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

func TestListBlocking(t *testing.T) {
	ctx := context.Background()
	list := newIntTemplate(memory.NewConnectionFactory()).OpsForList()

	t.Run("Timeout", func(t *testing.T) {
		start := time.Now()
		_, ok, err := list.BlockingLeftPop(ctx, "empty", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
	})

	t.Run("WakeUp", func(t *testing.T) {
		done := make(chan int, 1)
		go func() {
			v, _, err := list.BlockingRightPop(ctx, "wake", 5*time.Second)
			if err == nil {
				done <- v
			}
			close(done)
		}()

		time.Sleep(50 * time.Millisecond)
		_, err := list.LeftPush(ctx, "wake", 42)
		require.NoError(t, err)

		select {
		case v := <-done:
			assert.Equal(t, 42, v)
		case <-time.After(3 * time.Second):
			t.Fatal("blocking pop was not woken up")
		}
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()

		_, ok, err := list.BlockingLeftPop(cctx, "never", 0)
		assert.False(t, ok)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestListStructValues(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]serializer.IRedisSerializer[Person]{
		"gob":     serializer.NewGOBSerializer[Person](),
		"json":    serializer.NewJSONSerializer[Person](),
		"xml":     serializer.NewXMLSerializer[Person](),
		"yaml":    serializer.NewYAMLSerializer[Person](),
		"msgpack": serializer.NewMsgpackSerializer[Person](),
	} {
		t.Run(name, func(t *testing.T) {
			list := New(memory.NewConnectionFactory(), Config[string, Person, string, string]{
				KeySerializer:   serializer.NewStringSerializer(),
				ValueSerializer: s,
			}).OpsForList()

			alice := Person{Name: "alice", Address: Address{Number: 1}}
			bob := Person{Name: "bob", Address: Address{Number: 2}}
			_, err := list.RightPush(ctx, "people", alice, bob)
			require.NoError(t, err)

			n, err := list.Remove(ctx, "people", 1, alice)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			values, err := list.Range(ctx, "people", 0, -1)
			require.NoError(t, err)
			assert.Equal(t, []Person{bob}, values)
		})
	}
}
