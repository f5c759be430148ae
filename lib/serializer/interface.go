package serializer

import (
	"fmt"
	"reflect"
)

// EmptyArray is the payload written for nil values. It is never nil itself.
var EmptyArray = []byte{}

// IRedisSerializer is the interface for all value serializers. A serializer converts a
// typed value of type T into a byte payload and back.
//
// Implementations follow the same null contract:
//   - Serialize(nil) returns EmptyArray and no error
//   - Deserialize of a nil or empty payload returns the zero value of T and no error
type IRedisSerializer[T any] interface {
	// Serialize serializes the given value into a byte array.
	// It returns the serialized bytes and a *Error if the underlying codec failed
	Serialize(value T) ([]byte, error)
	// Deserialize deserializes a byte array into a value of type T.
	// It returns the value and a *Error if the underlying codec failed
	Deserialize(data []byte) (T, error)
}

// IsEmpty reports whether the payload is nil or has zero length
func IsEmpty(data []byte) bool {
	return len(data) == 0
}

// IsNil reports whether v is nil or a typed nil (pointer, map, slice, interface, func, chan)
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Error is returned whenever a codec fails to write or read a payload
type Error struct {
	Format string
	Op     string // "write" or "read"
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Format, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func writeError(format string, cause error) error {
	return &Error{Format: format, Op: "write", Cause: cause}
}

func readError(format string, cause error) error {
	return &Error{Format: format, Op: "read", Cause: cause}
}
