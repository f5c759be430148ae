package serializer

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// NewStringSerializer creates a serializer writing strings as their UTF-8 bytes.
// The empty string is treated as nil.
func NewStringSerializer() IRedisSerializer[string] {
	return &stringSerializerImpl{}
}

type stringSerializerImpl struct {
}

func (s stringSerializerImpl) Serialize(value string) ([]byte, error) {
	if value == "" {
		return EmptyArray, nil
	}
	return []byte(value), nil
}

func (s stringSerializerImpl) Deserialize(data []byte) (string, error) {
	return string(data), nil
}

// NewBytesSerializer creates a serializer passing byte slices through unchanged
func NewBytesSerializer() IRedisSerializer[[]byte] {
	return &bytesSerializerImpl{}
}

type bytesSerializerImpl struct {
}

func (b bytesSerializerImpl) Serialize(value []byte) ([]byte, error) {
	if value == nil {
		return EmptyArray, nil
	}
	return value, nil
}

func (b bytesSerializerImpl) Deserialize(data []byte) ([]byte, error) {
	if IsEmpty(data) {
		return nil, nil
	}
	return data, nil
}

// Number is the set of types the decimal serializer handles
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NewDecimalSerializer creates a serializer writing numbers as decimal text.
// Values stored this way can be changed by the store's own increment commands
// (INCRBY, HINCRBY, HINCRBYFLOAT).
func NewDecimalSerializer[T Number]() IRedisSerializer[T] {
	return &decimalSerializerImpl[T]{}
}

type decimalSerializerImpl[T Number] struct {
}

func (d decimalSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	switch v := any(value).(type) {
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	}
	if isUnsigned[T]() {
		return strconv.AppendUint(nil, uint64(value), 10), nil
	}
	if isFloat[T]() {
		return strconv.AppendFloat(nil, float64(value), 'g', -1, 64), nil
	}
	return strconv.AppendInt(nil, int64(value), 10), nil
}

func (d decimalSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var zero T
	if IsEmpty(data) {
		return zero, nil
	}
	s := string(data)
	bitSize := reflect.TypeFor[T]().Bits()
	if isFloat[T]() {
		f, err := strconv.ParseFloat(s, bitSize)
		if err != nil {
			return zero, readError("DECIMAL", err)
		}
		return T(f), nil
	}
	if isUnsigned[T]() {
		u, err := strconv.ParseUint(s, 10, bitSize)
		if err != nil {
			return zero, readError("DECIMAL", err)
		}
		return T(u), nil
	}
	i, err := strconv.ParseInt(s, 10, bitSize)
	if err == nil {
		return T(i), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return zero, readError("DECIMAL", err)
	}
	// a whole number written as float, e.g. by HINCRBYFLOAT on an integer typed hash
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return zero, readError("DECIMAL", err)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return zero, readError("DECIMAL", fmt.Errorf("%q is not a whole number", s))
	}
	i = int64(f)
	if int64(T(i)) != i {
		return zero, readError("DECIMAL", fmt.Errorf("%q: %w", s, strconv.ErrRange))
	}
	return T(i), nil
}

func isFloat[T Number]() bool {
	var one T = 1
	return one/2 != 0
}

func isUnsigned[T Number]() bool {
	var zero T
	return zero-1 > 0
}
