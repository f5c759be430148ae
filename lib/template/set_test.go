package template

import (
	"context"
	"testing"

	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOperations(t *testing.T) {
	ctx := context.Background()
	set := newIntTemplate(memory.NewConnectionFactory()).OpsForSet()

	n, err := set.Add(ctx, "a", 1, 2, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	_, err = set.Add(ctx, "b", 2, 3, 4)
	require.NoError(t, err)
	_, err = set.Add(ctx, "c", 3, 5)
	require.NoError(t, err)

	t.Run("Members", func(t *testing.T) {
		members, err := set.Members(ctx, "a")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3}, members)

		size, err := set.Size(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, int64(3), size)

		ok, err := set.IsMember(ctx, "a", 2)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = set.IsMember(ctx, "a", 9)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Algebra", func(t *testing.T) {
		diff, err := set.Difference(ctx, "a", "b")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1}, diff)

		inter, err := set.Intersect(ctx, "a", "b", "c")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{3}, inter)

		union, err := set.Union(ctx, "a", "b", "c")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, union)

		// a single key is combined with nothing
		only, err := set.Union(ctx, "a")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3}, only)
	})

	t.Run("AlgebraAndStore", func(t *testing.T) {
		n, err := set.DifferenceAndStore(ctx, "a", []string{"b"}, "diff")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = set.IntersectAndStore(ctx, "a", []string{"b"}, "inter")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = set.UnionAndStore(ctx, "a", []string{"b", "c"}, "union")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		members, err := set.Members(ctx, "inter")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{2, 3}, members)
	})

	t.Run("MoveAndRemove", func(t *testing.T) {
		_, err := set.Add(ctx, "from", 1, 2)
		require.NoError(t, err)

		ok, err := set.Move(ctx, "from", 1, "to")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = set.Move(ctx, "from", 9, "to")
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := set.Remove(ctx, "from", 2, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		members, err := set.Members(ctx, "to")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, members)
	})

	t.Run("PopAndRandom", func(t *testing.T) {
		_, err := set.Add(ctx, "pop", 7, 8)
		require.NoError(t, err)

		v, ok, err := set.RandomMember(ctx, "pop")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, []int{7, 8}, v)

		first, ok, err := set.Pop(ctx, "pop")
		require.NoError(t, err)
		assert.True(t, ok)
		second, ok, err := set.Pop(ctx, "pop")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.ElementsMatch(t, []int{7, 8}, []int{first, second})

		_, ok, err = set.Pop(ctx, "pop")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
