package testing

import (
	"context"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FactoryFunc creates the connection factory under test. Implementations backed by a shared
// server may return factories for the same server, every test uses fresh random keys.
type FactoryFunc func() connection.IConnectionFactory

// RunConnectionTests runs a comprehensive test suite for an IConnection implementation.
func RunConnectionTests(t *testing.T, name string, factory FactoryFunc) {
	t.Run(name, func(t *testing.T) {
		t.Run("Keys", func(t *testing.T) {
			testKeys(t, connect(t, factory))
		})

		t.Run("Strings", func(t *testing.T) {
			testStrings(t, connect(t, factory))
		})

		t.Run("ListPushPop", func(t *testing.T) {
			testListPushPop(t, connect(t, factory))
		})

		t.Run("ListEdit", func(t *testing.T) {
			testListEdit(t, connect(t, factory))
		})

		t.Run("ListBlocking", func(t *testing.T) {
			testListBlocking(t, factory)
		})

		t.Run("Sets", func(t *testing.T) {
			testSets(t, connect(t, factory))
		})

		t.Run("SetAlgebra", func(t *testing.T) {
			testSetAlgebra(t, connect(t, factory))
		})

		t.Run("Hashes", func(t *testing.T) {
			testHashes(t, connect(t, factory))
		})

		t.Run("SortedSets", func(t *testing.T) {
			testSortedSets(t, connect(t, factory))
		})

		t.Run("WrongType", func(t *testing.T) {
			testWrongType(t, connect(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// connect borrows a connection which is closed when the test finishes
func connect(t testing.TB, factory FactoryFunc) connection.IConnection {
	conn, err := factory().GetConnection(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// newKey returns a random key with a readable prefix
func newKey(prefix string) []byte {
	return []byte(prefix + ":" + uuid.NewString())
}

func strs(values [][]byte) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = string(v)
	}
	return result
}

func raw(values ...string) [][]byte {
	result := make([][]byte, len(values))
	for i, v := range values {
		result[i] = []byte(v)
	}
	return result
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testKeys(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	k1, k2, missing := newKey("k1"), newKey("k2"), newKey("missing")

	require.NoError(t, conn.Set(ctx, k1, []byte("a")))
	_, err := conn.RPush(ctx, k2, []byte("b"))
	require.NoError(t, err)

	ok, err := conn.Exists(ctx, k1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = conn.Exists(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := conn.Del(ctx, k1, k2, missing)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err = conn.Exists(ctx, k2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testStrings(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key, other, missing := newKey("str"), newKey("str"), newKey("missing")

	v, err := conn.Get(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, conn.Set(ctx, key, []byte("value")))
	v, err = conn.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	// an empty stored value is not reported as missing
	require.NoError(t, conn.Set(ctx, other, []byte{}))
	v, err = conn.Get(ctx, other)
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Len(t, v, 0)

	ok, err := conn.SetNX(ctx, key, []byte("other"))
	require.NoError(t, err)
	assert.False(t, ok)

	old, err := conn.GetSet(ctx, key, []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), old)

	values, err := conn.MGet(ctx, key, missing)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []byte("new"), values[0])
	assert.Nil(t, values[1])

	counter := newKey("counter")
	n, err := conn.IncrBy(ctx, counter, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	n, err = conn.IncrBy(ctx, counter, -7)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)

	_, err = conn.IncrBy(ctx, key, 1)
	assert.Error(t, err)
}

func testListPushPop(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key, missing := newKey("list"), newKey("missing")

	n, err := conn.RPush(ctx, key, raw("1", "2", "3")...)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = conn.LPush(ctx, key, raw("a", "b")...)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	values, err := conn.LRange(ctx, key, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "1", "2", "3"}, strs(values))

	values, err = conn.LRange(ctx, key, -2, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, strs(values))

	values, err = conn.LRange(ctx, missing, 0, -1)
	require.NoError(t, err)
	assert.Empty(t, values)

	n, err = conn.LPushX(ctx, missing, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = conn.RPushX(ctx, missing, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = conn.RPushX(ctx, key, []byte("4"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	v, err := conn.LPop(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v)

	v, err = conn.RPop(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("4"), v)

	v, err = conn.LPop(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, v)

	n, err = conn.LLen(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	v, err = conn.LIndex(ctx, key, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)

	v, err = conn.LIndex(ctx, key, 42)
	require.NoError(t, err)
	assert.Nil(t, v)

	dst := newKey("dst")
	v, err = conn.RPopLPush(ctx, key, dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)

	values, err = conn.LRange(ctx, dst, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, strs(values))

	v, err = conn.RPopLPush(ctx, missing, dst)
	require.NoError(t, err)
	assert.Nil(t, v)

	// popping the last element removes the key
	_, err = conn.LPop(ctx, dst)
	require.NoError(t, err)
	ok, err := conn.Exists(ctx, dst)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testListEdit(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("list")

	_, err := conn.RPush(ctx, key, raw("a", "x", "b", "x", "c", "x")...)
	require.NoError(t, err)

	n, err := conn.LInsert(ctx, key, connection.Before, []byte("b"), []byte("before-b"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = conn.LInsert(ctx, key, connection.After, []byte("c"), []byte("after-c"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	n, err = conn.LInsert(ctx, key, connection.After, []byte("nope"), []byte("z"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	values, err := conn.LRange(ctx, key, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x", "before-b", "b", "x", "c", "after-c", "x"}, strs(values))

	n, err = conn.LRem(ctx, key, -1, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = conn.LRem(ctx, key, 0, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, conn.LSet(ctx, key, 0, []byte("A")))
	assert.Error(t, conn.LSet(ctx, key, 99, []byte("out of range")))
	assert.Error(t, conn.LSet(ctx, newKey("missing"), 0, []byte("no such key")))

	require.NoError(t, conn.LTrim(ctx, key, 1, 2))
	values, err = conn.LRange(ctx, key, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"before-b", "b"}, strs(values))
}

func testListBlocking(t *testing.T, factory FactoryFunc) {
	ctx := context.Background()
	conn := connect(t, factory)
	key := newKey("blocking")

	// value already present
	_, err := conn.RPush(ctx, key, raw("1", "2")...)
	require.NoError(t, err)

	v, err := conn.BLPop(ctx, 1, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	v, err = conn.BRPop(ctx, 1, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	// value pushed while blocked
	pusher := connect(t, factory)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_, _ = pusher.LPush(context.Background(), key, []byte("late"))
	}()

	v, err = conn.BLPop(ctx, 5, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("late"), v)

	// timeout expires
	start := time.Now()
	v, err = conn.BRPop(ctx, 1, newKey("empty"))
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)

	// blocking rpoplpush
	src, dst := newKey("src"), newKey("dst")
	_, err = conn.RPush(ctx, src, []byte("moved"))
	require.NoError(t, err)
	v, err = conn.BRPopLPush(ctx, src, dst, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("moved"), v)

	v, err = conn.LIndex(ctx, dst, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("moved"), v)
}

func testSets(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key, missing := newKey("set"), newKey("missing")

	n, err := conn.SAdd(ctx, key, raw("a", "b", "c", "a")...)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = conn.SCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	members, err := conn.SMembers(ctx, key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, strs(members))

	members, err = conn.SMembers(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, members)

	ok, err := conn.SIsMember(ctx, key, []byte("b"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = conn.SIsMember(ctx, key, []byte("z"))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = conn.SRem(ctx, key, raw("a", "z")...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	v, err := conn.SRandMember(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, []string{"b", "c"}, string(v))

	v, err = conn.SRandMember(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, v)

	dst := newKey("dst")
	ok, err = conn.SMove(ctx, key, dst, []byte("b"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = conn.SMove(ctx, key, dst, []byte("b"))
	require.NoError(t, err)
	assert.False(t, ok)

	v, err = conn.SPop(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), v)

	v, err = conn.SPop(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func testSetAlgebra(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	k1, k2, k3 := newKey("s1"), newKey("s2"), newKey("s3")

	_, err := conn.SAdd(ctx, k1, raw("a", "b", "c", "d")...)
	require.NoError(t, err)
	_, err = conn.SAdd(ctx, k2, raw("c", "d", "e")...)
	require.NoError(t, err)
	_, err = conn.SAdd(ctx, k3, raw("d", "f")...)
	require.NoError(t, err)

	members, err := conn.SDiff(ctx, k1, k2, k3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, strs(members))

	members, err = conn.SInter(ctx, k1, k2, k3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"d"}, strs(members))

	members, err = conn.SUnion(ctx, k1, k2, k3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f"}, strs(members))

	members, err = conn.SInter(ctx, k1, newKey("missing"))
	require.NoError(t, err)
	assert.Empty(t, members)

	dst := newKey("dst")
	n, err := conn.SDiffStore(ctx, dst, k1, k2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = conn.SInterStore(ctx, dst, k1, k2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	members, err = conn.SMembers(ctx, dst)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c", "d"}, strs(members))

	n, err = conn.SUnionStore(ctx, dst, k2, k3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func testHashes(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key, missing := newKey("hash"), newKey("missing")

	created, err := conn.HSet(ctx, key, []byte("f1"), []byte("v1"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = conn.HSet(ctx, key, []byte("f1"), []byte("v1b"))
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, conn.HMSet(ctx, key, []connection.RawEntry{
		{Key: []byte("f2"), Value: []byte("v2")},
		{Key: []byte("f3"), Value: []byte("v3")},
	}))

	ok, err := conn.HSetNX(ctx, key, []byte("f2"), []byte("other"))
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := conn.HGet(ctx, key, []byte("f1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1b"), v)

	v, err = conn.HGet(ctx, key, []byte("nope"))
	require.NoError(t, err)
	assert.Nil(t, v)

	ok, err = conn.HExists(ctx, key, []byte("f3"))
	require.NoError(t, err)
	assert.True(t, ok)

	values, err := conn.HMGet(ctx, key, raw("f3", "nope", "f2")...)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, []byte("v3"), values[0])
	assert.Nil(t, values[1])
	assert.Equal(t, []byte("v2"), values[2])

	n, err := conn.HLen(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	keys, err := conn.HKeys(ctx, key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f1", "f2", "f3"}, strs(keys))

	vals, err := conn.HVals(ctx, key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1b", "v2", "v3"}, strs(vals))

	entries, err := conn.HGetAll(ctx, key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []connection.RawEntry{
		{Key: []byte("f1"), Value: []byte("v1b")},
		{Key: []byte("f2"), Value: []byte("v2")},
		{Key: []byte("f3"), Value: []byte("v3")},
	}, entries)

	entries, err = conn.HGetAll(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, entries)

	i, err := conn.HIncrBy(ctx, key, []byte("count"), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	f, err := conn.HIncrByFloat(ctx, key, []byte("count"), 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, f, 1e-9)

	_, err = conn.HIncrBy(ctx, key, []byte("f1"), 1)
	assert.Error(t, err)

	n, err = conn.HDel(ctx, key, raw("f1", "nope")...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func testSortedSets(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key, missing := newKey("zset"), newKey("missing")

	for member, score := range map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4} {
		added, err := conn.ZAdd(ctx, key, score, []byte(member))
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := conn.ZAdd(ctx, key, 2.5, []byte("b"))
	require.NoError(t, err)
	assert.False(t, added)

	members, err := conn.ZRange(ctx, key, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, strs(members))

	members, err = conn.ZRevRange(ctx, key, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, strs(members))

	tuples, err := conn.ZRangeWithScores(ctx, key, 1, 1)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, []byte("b"), tuples[0].Member)
	assert.Equal(t, 2.5, tuples[0].Score)

	members, err = conn.ZRangeByScore(ctx, key, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, strs(members))

	n, err := conn.ZCount(ctx, key, 1, 2.5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rank, ok, err := conn.ZRank(ctx, key, []byte("c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), rank)

	rank, ok, err = conn.ZRevRank(ctx, key, []byte("c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), rank)

	_, ok, err = conn.ZRank(ctx, key, []byte("nope"))
	require.NoError(t, err)
	assert.False(t, ok)

	score, err := conn.ZIncrBy(ctx, key, 10, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, 11.0, score)

	score, ok, err = conn.ZScore(ctx, key, []byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 11.0, score)

	_, ok, err = conn.ZScore(ctx, missing, []byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = conn.ZCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	other, dst := newKey("other"), newKey("dst")
	_, err = conn.ZAdd(ctx, other, 1, []byte("c"))
	require.NoError(t, err)
	_, err = conn.ZAdd(ctx, other, 1, []byte("x"))
	require.NoError(t, err)

	n, err = conn.ZUnionStore(ctx, dst, key, other)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = conn.ZInterStore(ctx, dst, key, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	score, ok, err = conn.ZScore(ctx, dst, []byte("c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4.0, score)

	// b=2.5 c=3 d=4 a=11
	n, err = conn.ZRemRangeByScore(ctx, key, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = conn.ZRemRangeByRank(ctx, key, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = conn.ZRem(ctx, key, raw("a", "nope")...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err = conn.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testWrongType(t *testing.T, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("list")

	_, err := conn.RPush(ctx, key, []byte("a"))
	require.NoError(t, err)

	_, err = conn.SAdd(ctx, key, []byte("a"))
	assert.Error(t, err)

	_, err = conn.HGet(ctx, key, []byte("f"))
	assert.Error(t, err)

	_, err = conn.Get(ctx, key)
	assert.Error(t, err)

	_, err = conn.ZAdd(ctx, key, 1, []byte("a"))
	assert.Error(t, err)
}
