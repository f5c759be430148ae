package template

import (
	"context"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// IListOperations binds list commands to typed keys and values.
// Single element results return ok == false if the list had no element to return.
type IListOperations[K any, V any] interface {
	Index(ctx context.Context, key K, index int64) (value V, ok bool, err error)
	LeftPop(ctx context.Context, key K) (value V, ok bool, err error)
	// BlockingLeftPop waits up to timeout for an element. A timeout below one second waits forever.
	BlockingLeftPop(ctx context.Context, key K, timeout time.Duration) (value V, ok bool, err error)
	LeftPush(ctx context.Context, key K, values ...V) (int64, error)
	LeftPushIfPresent(ctx context.Context, key K, values ...V) (int64, error)
	// LeftPushBefore inserts value before pivot and returns the new length, or -1 if pivot was not found
	LeftPushBefore(ctx context.Context, key K, pivot, value V) (int64, error)
	Size(ctx context.Context, key K) (int64, error)
	Range(ctx context.Context, key K, start, end int64) ([]V, error)
	Remove(ctx context.Context, key K, count int64, value V) (int64, error)
	RightPop(ctx context.Context, key K) (value V, ok bool, err error)
	BlockingRightPop(ctx context.Context, key K, timeout time.Duration) (value V, ok bool, err error)
	RightPush(ctx context.Context, key K, values ...V) (int64, error)
	RightPushIfPresent(ctx context.Context, key K, values ...V) (int64, error)
	RightPushAfter(ctx context.Context, key K, pivot, value V) (int64, error)
	RightPopAndLeftPush(ctx context.Context, sourceKey, destinationKey K) (value V, ok bool, err error)
	BlockingRightPopAndLeftPush(ctx context.Context, sourceKey, destinationKey K, timeout time.Duration) (value V, ok bool, err error)
	Set(ctx context.Context, key K, index int64, value V) error
	Trim(ctx context.Context, key K, start, end int64) error
}

type listOperations[K any, V any, HK comparable, HV any] struct {
	operations[K, V, HK, HV]
}

func (l *listOperations[K, V, HK, HV]) Index(ctx context.Context, key K, index int64) (V, bool, error) {
	return l.valueDeserializing(ctx, connection.CmdLIndex, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.LIndex(ctx, rawKey, index)
	})
}

func (l *listOperations[K, V, HK, HV]) LeftPop(ctx context.Context, key K) (V, bool, error) {
	return l.valueDeserializing(ctx, connection.CmdLPop, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.LPop(ctx, rawKey)
	})
}

func (l *listOperations[K, V, HK, HV]) BlockingLeftPop(ctx context.Context, key K, timeout time.Duration) (V, bool, error) {
	secs := timeoutSeconds(timeout)
	return l.valueDeserializing(ctx, connection.CmdBLPop, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.BLPop(ctx, secs, rawKey)
	})
}

func (l *listOperations[K, V, HK, HV]) LeftPush(ctx context.Context, key K, values ...V) (int64, error) {
	return l.push(ctx, connection.CmdLPush, key, values, connection.IConnection.LPush)
}

func (l *listOperations[K, V, HK, HV]) LeftPushIfPresent(ctx context.Context, key K, values ...V) (int64, error) {
	return l.push(ctx, connection.CmdLPushX, key, values, connection.IConnection.LPushX)
}

func (l *listOperations[K, V, HK, HV]) LeftPushBefore(ctx context.Context, key K, pivot, value V) (int64, error) {
	return l.insert(ctx, key, connection.Before, pivot, value)
}

func (l *listOperations[K, V, HK, HV]) Size(ctx context.Context, key K) (int64, error) {
	return onKey(ctx, l.operations, connection.CmdLLen, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.LLen(ctx, rawKey)
	})
}

func (l *listOperations[K, V, HK, HV]) Range(ctx context.Context, key K, start, end int64) ([]V, error) {
	return l.valuesDeserializing(ctx, connection.CmdLRange, key, func(conn connection.IConnection, rawKey []byte) ([][]byte, error) {
		return conn.LRange(ctx, rawKey, start, end)
	})
}

func (l *listOperations[K, V, HK, HV]) Remove(ctx context.Context, key K, count int64, value V) (int64, error) {
	rawValue, err := l.rawValue(value)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, l.operations, connection.CmdLRem, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.LRem(ctx, rawKey, count, rawValue)
	})
}

func (l *listOperations[K, V, HK, HV]) RightPop(ctx context.Context, key K) (V, bool, error) {
	return l.valueDeserializing(ctx, connection.CmdRPop, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.RPop(ctx, rawKey)
	})
}

func (l *listOperations[K, V, HK, HV]) BlockingRightPop(ctx context.Context, key K, timeout time.Duration) (V, bool, error) {
	secs := timeoutSeconds(timeout)
	return l.valueDeserializing(ctx, connection.CmdBRPop, key, func(conn connection.IConnection, rawKey []byte) ([]byte, error) {
		return conn.BRPop(ctx, secs, rawKey)
	})
}

func (l *listOperations[K, V, HK, HV]) RightPush(ctx context.Context, key K, values ...V) (int64, error) {
	return l.push(ctx, connection.CmdRPush, key, values, connection.IConnection.RPush)
}

func (l *listOperations[K, V, HK, HV]) RightPushIfPresent(ctx context.Context, key K, values ...V) (int64, error) {
	return l.push(ctx, connection.CmdRPushX, key, values, connection.IConnection.RPushX)
}

func (l *listOperations[K, V, HK, HV]) RightPushAfter(ctx context.Context, key K, pivot, value V) (int64, error) {
	return l.insert(ctx, key, connection.After, pivot, value)
}

func (l *listOperations[K, V, HK, HV]) RightPopAndLeftPush(ctx context.Context, sourceKey, destinationKey K) (V, bool, error) {
	rawDst, err := l.rawKey(destinationKey)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return l.valueDeserializing(ctx, connection.CmdRPopLPush, sourceKey, func(conn connection.IConnection, rawSrc []byte) ([]byte, error) {
		return conn.RPopLPush(ctx, rawSrc, rawDst)
	})
}

func (l *listOperations[K, V, HK, HV]) BlockingRightPopAndLeftPush(ctx context.Context, sourceKey, destinationKey K, timeout time.Duration) (V, bool, error) {
	rawDst, err := l.rawKey(destinationKey)
	if err != nil {
		var zero V
		return zero, false, err
	}
	secs := timeoutSeconds(timeout)
	return l.valueDeserializing(ctx, connection.CmdBRPopLPush, sourceKey, func(conn connection.IConnection, rawSrc []byte) ([]byte, error) {
		return conn.BRPopLPush(ctx, rawSrc, rawDst, secs)
	})
}

func (l *listOperations[K, V, HK, HV]) Set(ctx context.Context, key K, index int64, value V) error {
	rawValue, err := l.rawValue(value)
	if err != nil {
		return err
	}
	_, err = onKey(ctx, l.operations, connection.CmdLSet, key, func(conn connection.IConnection, rawKey []byte) (struct{}, error) {
		return struct{}{}, conn.LSet(ctx, rawKey, index, rawValue)
	})
	return err
}

func (l *listOperations[K, V, HK, HV]) Trim(ctx context.Context, key K, start, end int64) error {
	_, err := onKey(ctx, l.operations, connection.CmdLTrim, key, func(conn connection.IConnection, rawKey []byte) (struct{}, error) {
		return struct{}{}, conn.LTrim(ctx, rawKey, start, end)
	})
	return err
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type pushFunc func(conn connection.IConnection, ctx context.Context, key []byte, values ...[]byte) (int64, error)

func (l *listOperations[K, V, HK, HV]) push(ctx context.Context, cmd connection.Command, key K, values []V, push pushFunc) (int64, error) {
	rawValues, err := l.rawValues(values)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, l.operations, cmd, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return push(conn, ctx, rawKey, rawValues...)
	})
}

func (l *listOperations[K, V, HK, HV]) insert(ctx context.Context, key K, where connection.Position, pivot, value V) (int64, error) {
	rawPivot, err := l.rawValue(pivot)
	if err != nil {
		return 0, err
	}
	rawValue, err := l.rawValue(value)
	if err != nil {
		return 0, err
	}
	return onKey(ctx, l.operations, connection.CmdLInsert, key, func(conn connection.IConnection, rawKey []byte) (int64, error) {
		return conn.LInsert(ctx, rawKey, where, rawPivot, rawValue)
	})
}
