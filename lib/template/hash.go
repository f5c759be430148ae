package template

import (
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// IHashOperations binds hash commands to a typed key and typed fields and values
type IHashOperations[K any, HK comparable, HV any] interface {
	Delete(ctx context.Context, key K, hashKeys ...HK) (int64, error)
	HasKey(ctx context.Context, key K, hashKey HK) (bool, error)
	Get(ctx context.Context, key K, hashKey HK) (value HV, ok bool, err error)
	// MultiGet returns one value per hash key, the zero value for missing fields
	MultiGet(ctx context.Context, key K, hashKeys ...HK) ([]HV, error)
	Increment(ctx context.Context, key K, hashKey HK, delta int64) (int64, error)
	IncrementFloat(ctx context.Context, key K, hashKey HK, delta float64) (float64, error)
	Keys(ctx context.Context, key K) ([]HK, error)
	Size(ctx context.Context, key K) (int64, error)
	PutAll(ctx context.Context, key K, m map[HK]HV) error
	Put(ctx context.Context, key K, hashKey HK, value HV) error
	PutIfAbsent(ctx context.Context, key K, hashKey HK, value HV) (bool, error)
	Values(ctx context.Context, key K) ([]HV, error)
	// Entries returns all fields of the hash in the order the store reports them, nil if the key does not exist
	Entries(ctx context.Context, key K) ([]TypedEntry[HK, HV], error)
}

// TypedEntry is one field of a hash with its value
type TypedEntry[HK any, HV any] struct {
	Key   HK
	Value HV
}

// EntryMap collects entries into a map. A nil slice yields a nil map.
func EntryMap[HK comparable, HV any](entries []TypedEntry[HK, HV]) map[HK]HV {
	if entries == nil {
		return nil
	}
	m := make(map[HK]HV, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

type hashOperations[K any, V any, HK comparable, HV any] struct {
	operations[K, V, HK, HV]
}

func (h *hashOperations[K, V, HK, HV]) Delete(ctx context.Context, key K, hashKeys ...HK) (int64, error) {
	rawHashKeys, err := h.rawHashKeys(hashKeys)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, h.operations, connection.CmdHDel, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.HDel(ctx, rawKey, rawHashKeys...)
	})
}

func (h *hashOperations[K, V, HK, HV]) HasKey(ctx context.Context, key K, hashKey HK) (bool, error) {
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return false, err
	}
	return onKey(ctx, h.operations, connection.CmdHExists, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.HExists(ctx, rawKey, rawHashKey)
	})
}

func (h *hashOperations[K, V, HK, HV]) Get(ctx context.Context, key K, hashKey HK) (HV, bool, error) {
	var zero HV
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return zero, false, err
	}
	raw, err := onKey(ctx, h.operations, connection.CmdHGet, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.HGet(ctx, rawKey, rawHashKey)
	})
	if err != nil || raw == nil {
		return zero, false, err
	}
	value, err := h.deserializeHashValue(raw)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func (h *hashOperations[K, V, HK, HV]) MultiGet(ctx context.Context, key K, hashKeys ...HK) ([]HV, error) {
	rawHashKeys, err := h.rawHashKeys(hashKeys)
	if err != nil {
		return nil, err
	}
	raw, err := onKey(ctx, h.operations, connection.CmdHMGet, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.HMGet(ctx, rawKey, rawHashKeys...)
	})
	if err != nil {
		return nil, err
	}
	return h.deserializeHashValues(raw)
}

func (h *hashOperations[K, V, HK, HV]) Increment(ctx context.Context, key K, hashKey HK, delta int64) (int64, error) {
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, h.operations, connection.CmdHIncrBy, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.HIncrBy(ctx, rawKey, rawHashKey, delta)
	})
}

func (h *hashOperations[K, V, HK, HV]) IncrementFloat(ctx context.Context, key K, hashKey HK, delta float64) (float64, error) {
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, h.operations, connection.CmdHIncrByFloat, key, func(conn connection.IConnection, rawKey []byte) (float64, error) {
		return conn.HIncrByFloat(ctx, rawKey, rawHashKey, delta)
	})
}

func (h *hashOperations[K, V, HK, HV]) Keys(ctx context.Context, key K) ([]HK, error) {
	raw, err := onKey(ctx, h.operations, connection.CmdHKeys, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.HKeys(ctx, rawKey)
	})
	if err != nil {
		return nil, err
	}
	return h.deserializeHashKeys(raw)
}

func (h *hashOperations[K, V, HK, HV]) Size(ctx context.Context, key K) (int64, error) {
	return onKey(ctx, h.operations, connection.CmdHLen, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.HLen(ctx, rawKey)
	})
}

func (h *hashOperations[K, V, HK, HV]) PutAll(ctx context.Context, key K, m map[HK]HV) error {
	entries := make([]connection.RawEntry, 0, len(m))
	for hk, hv := range m {
		rawHashKey, err := h.rawHashKey(hk)
		if err != nil {
			return err
		}
		rawHashValue, err := h.rawHashValue(hv)
		if err != nil {
			return err
		}
		entries = append(entries, connection.RawEntry{Key: rawHashKey, Value: rawHashValue})
	}
	_, err := onKey(ctx, h.operations, connection.CmdHMSet, key, func(conn connection.IConnection, rawKey []byte) (struct{}, error) {
		return struct{}{}, conn.HMSet(ctx, rawKey, entries)
	})
	return err
}

func (h *hashOperations[K, V, HK, HV]) Put(ctx context.Context, key K, hashKey HK, value HV) error {
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return err
	}
	rawHashValue, err := h.rawHashValue(value)
	if err != nil {
		return err
	}
	_, err = onKey(ctx, h.operations, connection.CmdHSet, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.HSet(ctx, rawKey, rawHashKey, rawHashValue)
	})
	return err
}

func (h *hashOperations[K, V, HK, HV]) PutIfAbsent(ctx context.Context, key K, hashKey HK, value HV) (bool, error) {
	rawHashKey, err := h.rawHashKey(hashKey)
	if err != nil {
		return false, err
	}
	rawHashValue, err := h.rawHashValue(value)
	if err != nil {
		return false, err
	}
	return onKey(ctx, h.operations, connection.CmdHSetNX, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.HSetNX(ctx, rawKey, rawHashKey, rawHashValue)
	})
}

func (h *hashOperations[K, V, HK, HV]) Values(ctx context.Context, key K) ([]HV, error) {
	raw, err := onKey(ctx, h.operations, connection.CmdHVals, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.HVals(ctx, rawKey)
	})
	if err != nil {
		return nil, err
	}
	return h.deserializeHashValues(raw)
}

func (h *hashOperations[K, V, HK, HV]) Entries(ctx context.Context, key K) ([]TypedEntry[HK, HV], error) {
	raw, err := onKey(ctx, h.operations, connection.CmdHGetAll, key, func(conn connection.IConnection, rawKey []byte) ([]connection.RawEntry, error) {
		return conn.HGetAll(ctx, rawKey)
	})
	if err != nil {
		return nil, err
	}
	return h.deserializeHashEntries(raw)
}
