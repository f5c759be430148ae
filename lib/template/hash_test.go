package template

import (
	"context"
	"testing"

	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/ValentinKolb/kvt/lib/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashOperations(t *testing.T) {
	ctx := context.Background()
	hash := newIntTemplate(memory.NewConnectionFactory()).OpsForHash()

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, hash.Put(ctx, "h", "a", 1))

		v, ok, err := hash.Get(ctx, "h", "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		_, ok, err = hash.Get(ctx, "h", "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = hash.HasKey(ctx, "h", "a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = hash.PutIfAbsent(ctx, "h", "a", 2)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = hash.PutIfAbsent(ctx, "h", "b", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("PutAll", func(t *testing.T) {
		require.NoError(t, hash.PutAll(ctx, "all", map[string]int{"x": 1, "y": 2, "z": 3}))

		size, err := hash.Size(ctx, "all")
		require.NoError(t, err)
		assert.Equal(t, int64(3), size)

		keys, err := hash.Keys(ctx, "all")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"x", "y", "z"}, keys)

		values, err := hash.Values(ctx, "all")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3}, values)

		entries, err := hash.Entries(ctx, "all")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"x": 1, "y": 2, "z": 3}, EntryMap(entries))

		multi, err := hash.MultiGet(ctx, "all", "z", "missing", "x")
		require.NoError(t, err)
		assert.Equal(t, []int{3, 0, 1}, multi)

		n, err := hash.Delete(ctx, "all", "x", "missing")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("EntriesMissing", func(t *testing.T) {
		entries, err := hash.Entries(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, entries)
	})
}

func TestHashIncrement(t *testing.T) {
	ctx := context.Background()
	hash := New(memory.NewConnectionFactory(), Config[string, string, string, float64]{
		KeySerializer:       serializer.NewStringSerializer(),
		HashKeySerializer:   serializer.NewStringSerializer(),
		HashValueSerializer: serializer.NewDecimalSerializer[float64](),
	}).OpsForHash()

	n, err := hash.Increment(ctx, "counters", "hits", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	f, err := hash.IncrementFloat(ctx, "counters", "hits", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, f, 1e-9)

	v, ok, err := hash.Get(ctx, "counters", "hits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 5.5, v, 1e-9)
}

func TestHashIndependentSerializers(t *testing.T) {
	ctx := context.Background()
	hash := New(memory.NewConnectionFactory(), Config[string, string, int, Person]{
		KeySerializer:       serializer.NewStringSerializer(),
		HashKeySerializer:   serializer.NewDecimalSerializer[int](),
		HashValueSerializer: serializer.NewJSONSerializer[Person](),
	}).OpsForHash()

	people := map[int]Person{
		1: {Name: "alice", Address: Address{Number: 10}},
		2: {Name: "bob", Address: Address{Number: 20}},
	}
	require.NoError(t, hash.PutAll(ctx, "people", people))

	entries, err := hash.Entries(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, people, EntryMap(entries))
}

func TestHashEntriesOrder(t *testing.T) {
	ctx := context.Background()
	hash := newIntTemplate(memory.NewConnectionFactory()).OpsForHash()

	fields := []string{"zulu", "alpha", "mike", "bravo", "yankee"}
	for i, f := range fields {
		require.NoError(t, hash.Put(ctx, "ordered", f, i))
	}
	// overwriting keeps the position, deleting and re-adding moves to the end
	require.NoError(t, hash.Put(ctx, "ordered", "mike", 20))
	_, err := hash.Delete(ctx, "ordered", "alpha")
	require.NoError(t, err)
	require.NoError(t, hash.Put(ctx, "ordered", "alpha", 10))

	entries, err := hash.Entries(ctx, "ordered")
	require.NoError(t, err)
	assert.Equal(t, []TypedEntry[string, int]{
		{Key: "zulu", Value: 0},
		{Key: "mike", Value: 20},
		{Key: "bravo", Value: 3},
		{Key: "yankee", Value: 4},
		{Key: "alpha", Value: 10},
	}, entries)
}
