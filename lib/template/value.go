package template

import (
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// IValueOperations binds plain string commands to typed keys and values
type IValueOperations[K any, V any] interface {
	Set(ctx context.Context, key K, value V) error
	SetIfAbsent(ctx context.Context, key K, value V) (bool, error)
	Get(ctx context.Context, key K) (value V, ok bool, err error)
	// GetAndSet stores value and returns the previous value
	GetAndSet(ctx context.Context, key K, value V) (old V, ok bool, err error)
	// MultiGet returns one value per key, the zero value for missing keys
	MultiGet(ctx context.Context, keys ...K) ([]V, error)
	// Increment requires the stored value to be a decimal integer, see serializer.NewDecimalSerializer
	Increment(ctx context.Context, key K, delta int64) (int64, error)
}

type valueOperations[K any, V any, HK comparable, HV any] struct {
	operations[K, V, HK, HV]
}

func (v *valueOperations[K, V, HK, HV]) Set(ctx context.Context, key K, value V) error {
	rawValue, err := v.rawValue(value)
	if err != nil {
		return err
	}
	_, err = onKey(ctx, v.operations, connection.CmdSet, key, func(conn connection.IConnection, rawKey []byte) (struct{}, error) {
		return struct{}{}, conn.Set(ctx, rawKey, rawValue)
	})
	return err
}

func (v *valueOperations[K, V, HK, HV]) SetIfAbsent(ctx context.Context, key K, value V) (bool, error) {
	rawValue, err := v.rawValue(value)
	if err != nil {
		return false, err
	}
	return onKey(ctx, v.operations, connection.CmdSetNX, key, func(conn connection.IConnection, rawKey []byte) (bool, error) {
		return conn.SetNX(ctx, rawKey, rawValue)
	})
}

func (v *valueOperations[K, V, HK, HV]) Get(ctx context.Context, key K) (V, bool, error) {
	return v.valueDeserializing(ctx, connection.CmdGet, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.Get(ctx, rawKey)
	})
}

func (v *valueOperations[K, V, HK, HV]) GetAndSet(ctx context.Context, key K, value V) (V, bool, error) {
	rawValue, err := v.rawValue(value)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v.valueDeserializing(ctx, connection.CmdGetSet, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.GetSet(ctx, rawKey, rawValue)
	})
}

func (v *valueOperations[K, V, HK, HV]) MultiGet(ctx context.Context, keys ...K) ([]V, error) {
	rawKeys, err := v.rawKeyList(keys)
	if err != nil {
		return nil, err
	}
	raw, err := execute(ctx, v.exec(), connection.CmdMGet, func(conn connection.IConnection) ([][]byte, error) {
		return conn.MGet(ctx, rawKeys...)
	})
	if err != nil {
		return nil, err
	}
	return v.deserializeValues(raw)
}

func (v *valueOperations[K, V, HK, HV]) Increment(ctx context.Context, key K, delta int64) (int64, error) {
	return onKey(ctx, v.operations, connection.CmdIncrBy, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.IncrBy(ctx, rawKey, delta)
	})
}
