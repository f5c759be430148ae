package memory

import (
	"context"
	"strconv"

	"github.com/ValentinKolb/kvt/lib/connection"
)

func (ks *keyspace) HDel(_ context.Context, key []byte, fields ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeHash)
	if err != nil || v == nil {
		return 0, err
	}
	var removed int64
	for _, f := range fields {
		if v.hash.remove(f) {
			removed++
		}
	}
	ks.dropIfEmpty(key, v)
	return removed, nil
}

func (ks *keyspace) HExists(_ context.Context, key, field []byte) (bool, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil || v == nil {
		return false, err
	}
	_, ok := v.hash.get(field)
	return ok, nil
}

func (ks *keyspace) HGet(_ context.Context, key, field []byte) ([]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil || v == nil {
		return nil, err
	}
	if val, ok := v.hash.get(field); ok {
		return clone(val), nil
	}
	return nil, nil
}

func (ks *keyspace) HGetAll(_ context.Context, key []byte) ([]connection.RawEntry, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil || v == nil {
		return nil, err
	}
	entries := make([]connection.RawEntry, 0, v.hash.size())
	for _, f := range v.hash.fields {
		val, _ := v.hash.get(f)
		entries = append(entries, connection.RawEntry{Key: clone(f), Value: clone(val)})
	}
	return entries, nil
}

func (ks *keyspace) HIncrBy(_ context.Context, key, field []byte, delta int64) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeHash)
	if err != nil {
		return 0, err
	}
	var current int64
	if val, ok := v.hash.get(field); ok {
		current, err = strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			ks.dropIfEmpty(key, v)
			return 0, connection.ErrNotInteger
		}
	}
	current += delta
	v.hash.put(field, strconv.AppendInt(nil, current, 10))
	return current, nil
}

func (ks *keyspace) HIncrByFloat(_ context.Context, key, field []byte, delta float64) (float64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeHash)
	if err != nil {
		return 0, err
	}
	var current float64
	if val, ok := v.hash.get(field); ok {
		current, err = strconv.ParseFloat(string(val), 64)
		if err != nil {
			ks.dropIfEmpty(key, v)
			return 0, connection.ErrNotFloat
		}
	}
	current += delta
	v.hash.put(field, strconv.AppendFloat(nil, current, 'f', -1, 64))
	return current, nil
}

func (ks *keyspace) HKeys(_ context.Context, key []byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return [][]byte{}, nil
	}
	return cloneAll(v.hash.fields), nil
}

func (ks *keyspace) HLen(_ context.Context, key []byte) (int64, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil || v == nil {
		return 0, err
	}
	return int64(v.hash.size()), nil
}

func (ks *keyspace) HMGet(_ context.Context, key []byte, fields ...[]byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(fields))
	if v == nil {
		return result, nil
	}
	for i, f := range fields {
		if val, ok := v.hash.get(f); ok {
			result[i] = clone(val)
		}
	}
	return result, nil
}

func (ks *keyspace) HMSet(_ context.Context, key []byte, entries []connection.RawEntry) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeHash)
	if err != nil {
		return err
	}
	for _, e := range entries {
		v.hash.put(e.Key, e.Value)
	}
	ks.dropIfEmpty(key, v)
	return nil
}

func (ks *keyspace) HSet(_ context.Context, key, field, val []byte) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeHash)
	if err != nil {
		return false, err
	}
	return v.hash.put(field, val), nil
}

func (ks *keyspace) HSetNX(_ context.Context, key, field, val []byte) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeHash)
	if err != nil {
		return false, err
	}
	if _, ok := v.hash.get(field); ok {
		return false, nil
	}
	return v.hash.put(field, val), nil
}

func (ks *keyspace) HVals(_ context.Context, key []byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeHash)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return [][]byte{}, nil
	}
	result := make([][]byte, 0, v.hash.size())
	for _, f := range v.hash.fields {
		val, _ := v.hash.get(f)
		result = append(result, clone(val))
	}
	return result, nil
}
