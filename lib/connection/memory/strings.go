package memory

import (
	"context"
	"strconv"

	"github.com/ValentinKolb/kvt/lib/connection"
)

func (ks *keyspace) Get(_ context.Context, key []byte) ([]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeString)
	if err != nil || v == nil {
		return nil, err
	}
	return clone(v.str), nil
}

func (ks *keyspace) Set(_ context.Context, key, val []byte) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if err := ks.check(); err != nil {
		return err
	}
	ks.data[string(key)] = &value{typ: typeString, str: clone(val)}
	return nil
}

func (ks *keyspace) SetNX(_ context.Context, key, val []byte) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if err := ks.check(); err != nil {
		return false, err
	}
	if _, ok := ks.data[string(key)]; ok {
		return false, nil
	}
	ks.data[string(key)] = &value{typ: typeString, str: clone(val)}
	return true, nil
}

func (ks *keyspace) GetSet(_ context.Context, key, val []byte) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeString)
	if err != nil {
		return nil, err
	}
	var old []byte
	if v != nil {
		old = v.str
	}
	ks.data[string(key)] = &value{typ: typeString, str: clone(val)}
	return old, nil
}

func (ks *keyspace) MGet(_ context.Context, keys ...[]byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	if err := ks.check(); err != nil {
		return nil, err
	}
	result := make([][]byte, len(keys))
	for i, key := range keys {
		// keys of another type read as missing
		if v, err := ks.lookup(key, typeString); err == nil && v != nil {
			result[i] = clone(v.str)
		}
	}
	return result, nil
}

func (ks *keyspace) IncrBy(_ context.Context, key []byte, delta int64) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeString)
	if err != nil {
		return 0, err
	}
	var current int64
	if v != nil {
		current, err = strconv.ParseInt(string(v.str), 10, 64)
		if err != nil {
			return 0, connection.ErrNotInteger
		}
	}
	current += delta
	ks.data[string(key)] = &value{typ: typeString, str: strconv.AppendInt(nil, current, 10)}
	return current, nil
}
