package template

import (
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/ValentinKolb/kvt/lib/serializer"
)

// operations is the shared base of all facades. It converts typed arguments
// into their raw form and raw results back into typed values, using the
// serializers of the owning template.
type operations[K any, V any, HK comparable, HV any] struct {
	t *Template[K, V, HK, HV]
}

func (o operations[K, V, HK, HV]) exec() *executor {
	return &o.t.executor
}

// --------------------------------------------------------------------------
// Typed -> raw
// --------------------------------------------------------------------------

func (o operations[K, V, HK, HV]) rawKey(key K) ([]byte, error) {
	if serializer.IsNil(key) {
		return nil, ErrNilKey
	}
	return o.t.keySerializer.Serialize(key)
}

// rawKeys returns the raw form of key followed by the raw form of each of others
func (o operations[K, V, HK, HV]) rawKeys(key K, others []K) ([][]byte, error) {
	raw := make([][]byte, 0, len(others)+1)
	first, err := o.rawKey(key)
	if err != nil {
		return nil, err
	}
	raw = append(raw, first)
	for _, other := range others {
		b, err := o.rawKey(other)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return raw, nil
}

func (o operations[K, V, HK, HV]) rawKeyList(keys []K) ([][]byte, error) {
	raw := make([][]byte, len(keys))
	for i, key := range keys {
		b, err := o.rawKey(key)
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return raw, nil
}

func (o operations[K, V, HK, HV]) rawValue(value V) ([]byte, error) {
	return o.t.valueSerializer.Serialize(value)
}

func (o operations[K, V, HK, HV]) rawValues(values []V) ([][]byte, error) {
	raw := make([][]byte, len(values))
	for i, v := range values {
		b, err := o.rawValue(v)
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return raw, nil
}

func (o operations[K, V, HK, HV]) rawHashKey(hashKey HK) ([]byte, error) {
	if serializer.IsNil(hashKey) {
		return nil, ErrNilHashKey
	}
	return o.t.hashKeySerializer.Serialize(hashKey)
}

func (o operations[K, V, HK, HV]) rawHashKeys(hashKeys []HK) ([][]byte, error) {
	raw := make([][]byte, len(hashKeys))
	for i, hk := range hashKeys {
		b, err := o.rawHashKey(hk)
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return raw, nil
}

func (o operations[K, V, HK, HV]) rawHashValue(value HV) ([]byte, error) {
	return o.t.hashValueSerializer.Serialize(value)
}

// --------------------------------------------------------------------------
// Raw -> typed
// --------------------------------------------------------------------------

func (o operations[K, V, HK, HV]) deserializeKey(raw []byte) (K, error) {
	return o.t.keySerializer.Deserialize(raw)
}

func (o operations[K, V, HK, HV]) deserializeValue(raw []byte) (V, error) {
	return o.t.valueSerializer.Deserialize(raw)
}

func (o operations[K, V, HK, HV]) deserializeHashKey(raw []byte) (HK, error) {
	return o.t.hashKeySerializer.Deserialize(raw)
}

func (o operations[K, V, HK, HV]) deserializeHashValue(raw []byte) (HV, error) {
	return o.t.hashValueSerializer.Deserialize(raw)
}

// deserializeValues converts the elements of a list reply, keeping their order
func (o operations[K, V, HK, HV]) deserializeValues(raw [][]byte) ([]V, error) {
	return deserializeAll(raw, o.t.valueSerializer)
}

// deserializeValueSet converts the members of a set reply in the order the server sent them
func (o operations[K, V, HK, HV]) deserializeValueSet(raw [][]byte) ([]V, error) {
	return deserializeAll(raw, o.t.valueSerializer)
}

func (o operations[K, V, HK, HV]) deserializeHashKeys(raw [][]byte) ([]HK, error) {
	return deserializeAll(raw, o.t.hashKeySerializer)
}

func (o operations[K, V, HK, HV]) deserializeHashValues(raw [][]byte) ([]HV, error) {
	return deserializeAll(raw, o.t.hashValueSerializer)
}

// deserializeHashEntries converts raw hash entries keeping their order.
// A nil input yields nil, not an empty slice.
func (o operations[K, V, HK, HV]) deserializeHashEntries(raw []connection.RawEntry) ([]TypedEntry[HK, HV], error) {
	if raw == nil {
		return nil, nil
	}
	entries := make([]TypedEntry[HK, HV], len(raw))
	for i, e := range raw {
		k, err := o.deserializeHashKey(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := o.deserializeHashValue(e.Value)
		if err != nil {
			return nil, err
		}
		entries[i] = TypedEntry[HK, HV]{Key: k, Value: v}
	}
	return entries, nil
}

func (o operations[K, V, HK, HV]) deserializeTupleValues(raw []connection.RawTuple) ([]TypedTuple[V], error) {
	if raw == nil {
		return nil, nil
	}
	tuples := make([]TypedTuple[V], len(raw))
	for i, r := range raw {
		v, err := o.deserializeValue(r.Member)
		if err != nil {
			return nil, err
		}
		tuples[i] = TypedTuple[V]{Value: v, Score: r.Score}
	}
	return tuples, nil
}

func deserializeAll[T any](raw [][]byte, s serializer.IRedisSerializer[T]) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	values := make([]T, len(raw))
	for i, b := range raw {
		v, err := s.Deserialize(b)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// --------------------------------------------------------------------------
// Execution helpers
// --------------------------------------------------------------------------

// valueDeserializing runs one command on the raw form of key and deserializes the raw
// value it returns. ok is false if the command returned no value.
func (o operations[K, V, HK, HV]) valueDeserializing(ctx context.Context, cmd connection.Command, key K,
	action func(conn connection.IConnection, rawKey []byte) ([]byte, error)) (value V, ok bool, err error) {

	rawKey, err := o.rawKey(key)
	if err != nil {
		return value, false, err
	}
	raw, err := execute(ctx, o.exec(), cmd, func(conn connection.IConnection) ([]byte, error) {
		return action(conn, rawKey)
	})
	if err != nil || raw == nil {
		return value, false, err
	}
	value, err = o.deserializeValue(raw)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// valuesDeserializing runs one command on the raw form of key and deserializes the list of raw values it returns
func (o operations[K, V, HK, HV]) valuesDeserializing(ctx context.Context, cmd connection.Command, key K,
	action func(conn connection.IConnection, rawKey []byte) ([][]byte, error)) ([]V, error) {

	rawKey, err := o.rawKey(key)
	if err != nil {
		return nil, err
	}
	raw, err := execute(ctx, o.exec(), cmd, func(conn connection.IConnection) ([][]byte, error) {
		return action(conn, rawKey)
	})
	if err != nil {
		return nil, err
	}
	return o.deserializeValues(raw)
}

// onKey runs one command on the raw form of key and returns its result unchanged
func onKey[K any, V any, HK comparable, HV any, R any](ctx context.Context, o operations[K, V, HK, HV], cmd connection.Command, key K,
	action func(conn connection.IConnection, rawKey []byte) (R, error)) (R, error) {

	rawKey, err := o.rawKey(key)
	if err != nil {
		var zero R
		return zero, err
	}
	return execute(ctx, o.exec(), cmd, func(conn connection.IConnection) (R, error) {
		return action(conn, rawKey)
	})
}
