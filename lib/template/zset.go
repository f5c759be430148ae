package template

import (
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// TypedTuple is a sorted set member together with its score
type TypedTuple[V any] struct {
	Value V
	Score float64
}

// IZSetOperations binds sorted set commands to typed keys and members.
// Ranges are by rank (inclusive, negative indexes count from the end) unless named otherwise.
type IZSetOperations[K any, V any] interface {
	// Add sets the score of value and reports whether value was newly added
	Add(ctx context.Context, key K, value V, score float64) (bool, error)
	Remove(ctx context.Context, key K, values ...V) (int64, error)
	IncrementScore(ctx context.Context, key K, value V, delta float64) (float64, error)
	Rank(ctx context.Context, key K, value V) (rank int64, ok bool, err error)
	ReverseRank(ctx context.Context, key K, value V) (rank int64, ok bool, err error)
	Range(ctx context.Context, key K, start, end int64) ([]V, error)
	ReverseRange(ctx context.Context, key K, start, end int64) ([]V, error)
	RangeWithScores(ctx context.Context, key K, start, end int64) ([]TypedTuple[V], error)
	RangeByScore(ctx context.Context, key K, min, max float64) ([]V, error)
	Count(ctx context.Context, key K, min, max float64) (int64, error)
	Size(ctx context.Context, key K) (int64, error)
	Score(ctx context.Context, key K, value V) (score float64, ok bool, err error)
	RemoveRange(ctx context.Context, key K, start, end int64) (int64, error)
	RemoveRangeByScore(ctx context.Context, key K, min, max float64) (int64, error)
	UnionAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error)
	IntersectAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error)
}

type zsetOperations[K any, V any, HK comparable, HV any] struct {
	operations[K, V, HK, HV]
}

func (z *zsetOperations[K, V, HK, HV]) Add(ctx context.Context, key K, value V, score float64) (bool, error) {
	rawValue, err := z.rawValue(value)
	if err != nil {
		return false, err
	}
	return onKey(ctx, z.operations, connection.CmdZAdd, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.ZAdd(ctx, rawKey, score, rawValue)
	})
}

func (z *zsetOperations[K, V, HK, HV]) Remove(ctx context.Context, key K, values ...V) (int64, error) {
	rawValues, err := z.rawValues(values)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, z.operations, connection.CmdZRem, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.ZRem(ctx, rawKey, rawValues...)
	})
}

func (z *zsetOperations[K, V, HK, HV]) IncrementScore(ctx context.Context, key K, value V, delta float64) (float64, error) {
	rawValue, err := z.rawValue(value)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, z.operations, connection.CmdZIncrBy, key, func(conn connection.IConnection, rawKey []byte) (float64, error) {
		return conn.ZIncrBy(ctx, rawKey, delta, rawValue)
	})
}

func (z *zsetOperations[K, V, HK, HV]) Rank(ctx context.Context, key K, value V) (int64, bool, error) {
	return z.rank(ctx, connection.CmdZRank, key, value, connection.IConnection.ZRank)
}

func (z *zsetOperations[K, V, HK, HV]) ReverseRank(ctx context.Context, key K, value V) (int64, bool, error) {
	return z.rank(ctx, connection.CmdZRevRank, key, value, connection.IConnection.ZRevRank)
}

func (z *zsetOperations[K, V, HK, HV]) Range(ctx context.Context, key K, start, end int64) ([]V, error) {
	return z.valuesDeserializing(ctx, connection.CmdZRange, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.ZRange(ctx, rawKey, start, end)
	})
}

func (z *zsetOperations[K, V, HK, HV]) ReverseRange(ctx context.Context, key K, start, end int64) ([]V, error) {
	return z.valuesDeserializing(ctx, connection.CmdZRevRange, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.ZRevRange(ctx, rawKey, start, end)
	})
}

func (z *zsetOperations[K, V, HK, HV]) RangeWithScores(ctx context.Context, key K, start, end int64) ([]TypedTuple[V], error) {
	raw, err := onKey(ctx, z.operations, connection.CmdZRangeWithScores, key, func(conn connection.IConnection, rawKey []byte) ([]connection.RawTuple, error) {
		return conn.ZRangeWithScores(ctx, rawKey, start, end)
	})
	if err != nil {
		return nil, err
	}
	return z.deserializeTupleValues(raw)
}

func (z *zsetOperations[K, V, HK, HV]) RangeByScore(ctx context.Context, key K, min, max float64) ([]V, error) {
	return z.valuesDeserializing(ctx, connection.CmdZRangeByScore, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.ZRangeByScore(ctx, rawKey, min, max)
	})
}

func (z *zsetOperations[K, V, HK, HV]) Count(ctx context.Context, key K, min, max float64) (int64, error) {
	return onKey(ctx, z.operations, connection.CmdZCount, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.ZCount(ctx, rawKey, min, max)
	})
}

func (z *zsetOperations[K, V, HK, HV]) Size(ctx context.Context, key K) (int64, error) {
	return onKey(ctx, z.operations, connection.CmdZCard, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.ZCard(ctx, rawKey)
	})
}

func (z *zsetOperations[K, V, HK, HV]) Score(ctx context.Context, key K, value V) (float64, bool, error) {
	rawValue, err := z.rawValue(value)
	if err != nil {
		return 0, false, err
	}
	res, err := onKey(ctx, z.operations, connection.CmdZScore, key, func(conn connection.IConnection, rawKey []byte) (scoreResult, error) {
		score, ok, err := conn.ZScore(ctx, rawKey, rawValue)
		return scoreResult{score, ok}, err
	})
	return res.score, res.ok, err
}

func (z *zsetOperations[K, V, HK, HV]) RemoveRange(ctx context.Context, key K, start, end int64) (int64, error) {
	return onKey(ctx, z.operations, connection.CmdZRemRangeByRank, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.ZRemRangeByRank(ctx, rawKey, start, end)
	})
}

func (z *zsetOperations[K, V, HK, HV]) RemoveRangeByScore(ctx context.Context, key K, min, max float64) (int64, error) {
	return onKey(ctx, z.operations, connection.CmdZRemRangeByScore, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.ZRemRangeByScore(ctx, rawKey, min, max)
	})
}

func (z *zsetOperations[K, V, HK, HV]) UnionAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error) {
	return z.store(ctx, connection.CmdZUnionStore, key, otherKeys, destKey, connection.IConnection.ZUnionStore)
}

func (z *zsetOperations[K, V, HK, HV]) IntersectAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error) {
	return z.store(ctx, connection.CmdZInterStore, key, otherKeys, destKey, connection.IConnection.ZInterStore)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type scoreResult struct {
	score float64
	ok    bool
}

type rankResult struct {
	rank int64
	ok   bool
}

type rankFunc func(conn connection.IConnection, ctx context.Context, key, member []byte) (int64, bool, error)

func (z *zsetOperations[K, V, HK, HV]) rank(ctx context.Context, cmd connection.Command, key K, value V, rank rankFunc) (int64, bool, error) {
	rawValue, err := z.rawValue(value)
	if err != nil {
		return 0, false, err
	}
	res, err := onKey(ctx, z.operations, cmd, key, func(conn connection.IConnection, rawKey []byte) (rankResult, error) {
		r, ok, err := rank(conn, ctx, rawKey, rawValue)
		return rankResult{r, ok}, err
	})
	return res.rank, res.ok, err
}

func (z *zsetOperations[K, V, HK, HV]) store(ctx context.Context, cmd connection.Command, key K, otherKeys []K, destKey K, store combineStoreFunc) (int64, error) {
	rawKeys, err := z.rawKeys(key, otherKeys)
	if err != nil {
		return 0, err
	}
	rawDst, err := z.rawKey(destKey)
	if err != nil {
		return 0, err
	}
	return execute(ctx, z.exec(), cmd, func(conn connection.IConnection) (int64, error) {
		return store(conn, ctx, rawDst, rawKeys...)
	})
}
