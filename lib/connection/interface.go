package connection

import (
	"context"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// RawEntry is one field/value pair of a hash as returned by the server
type RawEntry struct {
	Key   []byte
	Value []byte
}

// RawTuple is a sorted set member with its score
type RawTuple struct {
	Member []byte
	Score  float64
}

// Position selects the side of the pivot for LInsert
type Position int

const (
	Before Position = iota
	After
)

func (p Position) String() string {
	if p == After {
		return "AFTER"
	}
	return "BEFORE"
}

// IConnectionFactory hands out connections to the key-value server.
// The returned connection must be closed by the caller once the command completed.
type IConnectionFactory interface {
	GetConnection(ctx context.Context) (IConnection, error)
}

// IConnection is the byte level command interface of the key-value server.
//
// Conventions shared by all implementations:
//   - commands returning a single value return nil if the key (or field, or member) does not exist
//   - values that exist are never returned as nil, an empty stored value is returned as []byte{}
//   - blocking commands take their timeout in whole seconds, 0 blocks until a value arrives
//     or ctx is done; nil is returned if the timeout expired
//   - HGetAll returns nil if the hash does not exist
type IConnection interface {
	// Keys

	Del(ctx context.Context, keys ...[]byte) (int64, error)
	Exists(ctx context.Context, key []byte) (bool, error)

	// Strings

	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	SetNX(ctx context.Context, key, value []byte) (bool, error)
	GetSet(ctx context.Context, key, value []byte) ([]byte, error)
	MGet(ctx context.Context, keys ...[]byte) ([][]byte, error)
	IncrBy(ctx context.Context, key []byte, delta int64) (int64, error)

	// Lists

	LIndex(ctx context.Context, key []byte, index int64) ([]byte, error)
	LInsert(ctx context.Context, key []byte, where Position, pivot, value []byte) (int64, error)
	LLen(ctx context.Context, key []byte) (int64, error)
	LPop(ctx context.Context, key []byte) ([]byte, error)
	BLPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error)
	LPush(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	LPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	LRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	LRem(ctx context.Context, key []byte, count int64, value []byte) (int64, error)
	LSet(ctx context.Context, key []byte, index int64, value []byte) error
	LTrim(ctx context.Context, key []byte, start, stop int64) error
	RPop(ctx context.Context, key []byte) ([]byte, error)
	BRPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error)
	RPopLPush(ctx context.Context, src, dst []byte) ([]byte, error)
	BRPopLPush(ctx context.Context, src, dst []byte, timeoutSec int64) ([]byte, error)
	RPush(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	RPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error)

	// Sets

	SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SCard(ctx context.Context, key []byte) (int64, error)
	SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SDiffStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error)
	SInter(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SInterStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error)
	SIsMember(ctx context.Context, key, member []byte) (bool, error)
	SMembers(ctx context.Context, key []byte) ([][]byte, error)
	SMove(ctx context.Context, src, dst, member []byte) (bool, error)
	SPop(ctx context.Context, key []byte) ([]byte, error)
	SRandMember(ctx context.Context, key []byte) ([]byte, error)
	SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SUnionStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error)

	// Hashes

	HDel(ctx context.Context, key []byte, fields ...[]byte) (int64, error)
	HExists(ctx context.Context, key, field []byte) (bool, error)
	HGet(ctx context.Context, key, field []byte) ([]byte, error)
	HGetAll(ctx context.Context, key []byte) ([]RawEntry, error)
	HIncrBy(ctx context.Context, key, field []byte, delta int64) (int64, error)
	HIncrByFloat(ctx context.Context, key, field []byte, delta float64) (float64, error)
	HKeys(ctx context.Context, key []byte) ([][]byte, error)
	HLen(ctx context.Context, key []byte) (int64, error)
	HMGet(ctx context.Context, key []byte, fields ...[]byte) ([][]byte, error)
	HMSet(ctx context.Context, key []byte, entries []RawEntry) error
	HSet(ctx context.Context, key, field, value []byte) (bool, error)
	HSetNX(ctx context.Context, key, field, value []byte) (bool, error)
	HVals(ctx context.Context, key []byte) ([][]byte, error)

	// Sorted sets

	ZAdd(ctx context.Context, key []byte, score float64, member []byte) (bool, error)
	ZCard(ctx context.Context, key []byte) (int64, error)
	ZCount(ctx context.Context, key []byte, min, max float64) (int64, error)
	ZIncrBy(ctx context.Context, key []byte, delta float64, member []byte) (float64, error)
	ZInterStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error)
	ZRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	ZRangeByScore(ctx context.Context, key []byte, min, max float64) ([][]byte, error)
	ZRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]RawTuple, error)
	ZRank(ctx context.Context, key, member []byte) (int64, bool, error)
	ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	ZRemRangeByRank(ctx context.Context, key []byte, start, stop int64) (int64, error)
	ZRemRangeByScore(ctx context.Context, key []byte, min, max float64) (int64, error)
	ZRevRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	ZRevRank(ctx context.Context, key, member []byte) (int64, bool, error)
	ZScore(ctx context.Context, key, member []byte) (float64, bool, error)
	ZUnionStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error)

	// Close releases the connection. The connection must not be used afterward.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ConnectionError (code %s): %s", e.Code, e.Msg)
}

// Is matches errors carrying the same return code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new connection error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCInternalError RetCode = iota + 1 // Command failed due to an internal error.
	RetCWrongType                        // Key holds a value of another type.
	RetCNoSuchKey                        // Key does not exist.
	RetCOutOfRange                       // Index out of range.
	RetCNotInteger                       // Value is not an integer or out of range.
	RetCNotFloat                         // Value is not a valid float.
	RetCClosed                           // Connection was already closed.
)

func (c RetCode) String() string {
	switch c {
	case RetCInternalError:
		return "InternalError"
	case RetCWrongType:
		return "WrongType"
	case RetCNoSuchKey:
		return "NoSuchKey"
	case RetCOutOfRange:
		return "OutOfRange"
	case RetCNotInteger:
		return "NotInteger"
	case RetCNotFloat:
		return "NotFloat"
	case RetCClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

var (
	ErrWrongType  = NewError(RetCWrongType, "operation against a key holding the wrong kind of value")
	ErrNoSuchKey  = NewError(RetCNoSuchKey, "no such key")
	ErrOutOfRange = NewError(RetCOutOfRange, "index out of range")
	ErrNotInteger = NewError(RetCNotInteger, "value is not an integer or out of range")
	ErrNotFloat   = NewError(RetCNotFloat, "value is not a valid float")
	ErrClosed     = NewError(RetCClosed, "connection closed")
)
