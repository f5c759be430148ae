package template

import (
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// ISetOperations binds set commands to typed keys and values.
// Set results are returned in the order the server replied with.
type ISetOperations[K any, V any] interface {
	// Add adds values to the set and returns how many were not already members
	Add(ctx context.Context, key K, values ...V) (int64, error)
	Difference(ctx context.Context, key K, otherKeys ...K) ([]V, error)
	DifferenceAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error)
	Intersect(ctx context.Context, key K, otherKeys ...K) ([]V, error)
	IntersectAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error)
	IsMember(ctx context.Context, key K, value V) (bool, error)
	Members(ctx context.Context, key K) ([]V, error)
	Move(ctx context.Context, key K, value V, destKey K) (bool, error)
	RandomMember(ctx context.Context, key K) (value V, ok bool, err error)
	Remove(ctx context.Context, key K, values ...V) (int64, error)
	Pop(ctx context.Context, key K) (value V, ok bool, err error)
	Size(ctx context.Context, key K) (int64, error)
	Union(ctx context.Context, key K, otherKeys ...K) ([]V, error)
	UnionAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error)
}

type setOperations[K any, V any, HK comparable, HV any] struct {
	operations[K, V, HK, HV]
}

func (s *setOperations[K, V, HK, HV]) Add(ctx context.Context, key K, values ...V) (int64, error) {
	rawValues, err := s.rawValues(values)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, s.operations, connection.CmdSAdd, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.SAdd(ctx, rawKey, rawValues...)
	})
}

func (s *setOperations[K, V, HK, HV]) Difference(ctx context.Context, key K, otherKeys ...K) ([]V, error) {
	return s.combine(ctx, connection.CmdSDiff, key, otherKeys, connection.IConnection.SDiff)
}

func (s *setOperations[K, V, HK, HV]) DifferenceAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error) {
	return s.combineAndStore(ctx, connection.CmdSDiffStore, key, otherKeys, destKey, connection.IConnection.SDiffStore)
}

func (s *setOperations[K, V, HK, HV]) Intersect(ctx context.Context, key K, otherKeys ...K) ([]V, error) {
	return s.combine(ctx, connection.CmdSInter, key, otherKeys, connection.IConnection.SInter)
}

func (s *setOperations[K, V, HK, HV]) IntersectAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error) {
	return s.combineAndStore(ctx, connection.CmdSInterStore, key, otherKeys, destKey, connection.IConnection.SInterStore)
}

func (s *setOperations[K, V, HK, HV]) IsMember(ctx context.Context, key K, value V) (bool, error) {
	rawValue, err := s.rawValue(value)
	if err != nil {
		return false, err
	}
	return onKey(ctx, s.operations, connection.CmdSIsMember, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.SIsMember(ctx, rawKey, rawValue)
	})
}

func (s *setOperations[K, V, HK, HV]) Members(ctx context.Context, key K) ([]V, error) {
	rawKey, err := s.rawKey(key)
	if err != nil {
		return nil, err
	}
	raw, err := execute(ctx, s.exec(), connection.CmdSMembers, func(conn connection.IConnection) ([][]byte, error) {
		return conn.SMembers(ctx, rawKey)
	})
	if err != nil {
		return nil, err
	}
	return s.deserializeValueSet(raw)
}

func (s *setOperations[K, V, HK, HV]) Move(ctx context.Context, key K, value V, destKey K) (bool, error) {
	rawDst, err := s.rawKey(destKey)
	if err != nil {
		return false, err
	}
	rawValue, err := s.rawValue(value)
	if err != nil {
		return false, err
	}
	return onKey(ctx, s.operations, connection.CmdSMove, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.SMove(ctx, rawKey, rawDst, rawValue)
	})
}

func (s *setOperations[K, V, HK, HV]) RandomMember(ctx context.Context, key K) (V, bool, error) {
	return s.valueDeserializing(ctx, connection.CmdSRandMember, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.SRandMember(ctx, rawKey)
	})
}

func (s *setOperations[K, V, HK, HV]) Remove(ctx context.Context, key K, values ...V) (int64, error) {
	rawValues, err := s.rawValues(values)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, s.operations, connection.CmdSRem, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.SRem(ctx, rawKey, rawValues...)
	})
}

func (s *setOperations[K, V, HK, HV]) Pop(ctx context.Context, key K) (V, bool, error) {
	return s.valueDeserializing(ctx, connection.CmdSPop, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.SPop(ctx, rawKey)
	})
}

func (s *setOperations[K, V, HK, HV]) Size(ctx context.Context, key K) (int64, error) {
	return onKey(ctx, s.operations, connection.CmdSCard, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.SCard(ctx, rawKey)
	})
}

func (s *setOperations[K, V, HK, HV]) Union(ctx context.Context, key K, otherKeys ...K) ([]V, error) {
	return s.combine(ctx, connection.CmdSUnion, key, otherKeys, connection.IConnection.SUnion)
}

func (s *setOperations[K, V, HK, HV]) UnionAndStore(ctx context.Context, key K, otherKeys []K, destKey K) (int64, error) {
	return s.combineAndStore(ctx, connection.CmdSUnionStore, key, otherKeys, destKey, connection.IConnection.SUnionStore)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type (
	combineFunc      func(conn connection.IConnection, ctx context.Context, keys ...[]byte) ([][]byte, error)
	combineStoreFunc func(conn connection.IConnection, ctx context.Context, dst []byte, keys ...[]byte) (int64, error)
)

func (s *setOperations[K, V, HK, HV]) combine(ctx context.Context, cmd connection.Command, key K, otherKeys []K, combine combineFunc) ([]V, error) {
	rawKeys, err := s.rawKeys(key, otherKeys)
	if err != nil {
		return nil, err
	}
	raw, err := execute(ctx, s.exec(), cmd, func(conn connection.IConnection) ([][]byte, error) {
		return combine(conn, ctx, rawKeys...)
	})
	if err != nil {
		return nil, err
	}
	return s.deserializeValueSet(raw)
}

func (s *setOperations[K, V, HK, HV]) combineAndStore(ctx context.Context, cmd connection.Command, key K, otherKeys []K, destKey K, store combineStoreFunc) (int64, error) {
	rawKeys, err := s.rawKeys(key, otherKeys)
	if err != nil {
		return 0, err
	}
	rawDst, err := s.rawKey(destKey)
	if err != nil {
		return 0, err
	}
	return execute(ctx, s.exec(), cmd, func(conn connection.IConnection) (int64, error) {
		return store(conn, ctx, rawDst, rawKeys...)
	})
}
