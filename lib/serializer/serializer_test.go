package serializer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Address struct {
	Number int
}

type Person struct {
	Name    string
	Address Address
}

// objectSerializers is a map of serializer name to serializer for type T
func objectSerializers[T any]() map[string]IRedisSerializer[T] {
	return map[string]IRedisSerializer[T]{
		"GOB":     NewGOBSerializer[T](),
		"JSON":    NewJSONSerializer[T](),
		"XML":     NewXMLSerializer[T](),
		"YAML":    NewYAMLSerializer[T](),
		"MSGPACK": NewMsgpackSerializer[T](),
	}
}

func testRoundTrip[T any](t *testing.T, values ...T) {
	t.Helper()
	for name, s := range objectSerializers[T]() {
		t.Run(name, func(t *testing.T) {
			for _, v := range values {
				data, err := s.Serialize(v)
				require.NoError(t, err)
				require.NotEmpty(t, data)

				got, err := s.Deserialize(data)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
		})
	}
}

// TestSerializerRoundTrip tests that values can be serialized and deserialized by every backend
func TestSerializerRoundTrip(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		testRoundTrip(t, 1, 42, -7, 300)
	})
	t.Run("LargeInt", func(t *testing.T) {
		testRoundTrip[int64](t, math.MaxInt64, math.MinInt64+1, 1<<40)
	})
	t.Run("Float", func(t *testing.T) {
		testRoundTrip(t, 3.14159, -2.5e10, 0.1)
	})
	t.Run("String", func(t *testing.T) {
		testRoundTrip(t, "hello", "with spaces and ümlauts", "42")
	})
	t.Run("Struct", func(t *testing.T) {
		testRoundTrip(t,
			Person{Name: "Ada", Address: Address{Number: 12}},
			Person{Name: "Grace", Address: Address{Number: 1906}},
		)
	})
	t.Run("StructPointer", func(t *testing.T) {
		testRoundTrip(t, &Person{Name: "Linus", Address: Address{Number: 7}})
	})
}

// TestSerializerNilHandling tests the null contract shared by all backends
func TestSerializerNilHandling(t *testing.T) {
	for name, s := range objectSerializers[*Person]() {
		t.Run(name, func(t *testing.T) {
			data, err := s.Serialize(nil)
			require.NoError(t, err)
			assert.NotNil(t, data)
			assert.Len(t, data, 0)

			got, err := s.Deserialize(nil)
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = s.Deserialize([]byte{})
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}

	t.Run("NilSlice", func(t *testing.T) {
		s := NewJSONSerializer[[]int]()
		data, err := s.Serialize(nil)
		require.NoError(t, err)
		assert.Equal(t, EmptyArray, data)

		got, err := s.Deserialize(data)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ZeroValueOnEmpty", func(t *testing.T) {
		got, err := NewGOBSerializer[int]().Deserialize(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})
}

// TestSerializerErrors tests that codec failures are wrapped into *Error
func TestSerializerErrors(t *testing.T) {
	t.Run("WriteJSON", func(t *testing.T) {
		_, err := NewJSONSerializer[float64]().Serialize(math.Inf(1))
		require.Error(t, err)

		var serErr *Error
		require.True(t, errors.As(err, &serErr))
		assert.Equal(t, "write", serErr.Op)
		assert.Equal(t, "JSON", serErr.Format)
		assert.NotNil(t, errors.Unwrap(err))
		assert.Contains(t, err.Error(), "could not write JSON")
	})

	t.Run("ReadJSON", func(t *testing.T) {
		_, err := NewJSONSerializer[Person]().Deserialize([]byte("{not json"))
		require.Error(t, err)

		var serErr *Error
		require.True(t, errors.As(err, &serErr))
		assert.Equal(t, "read", serErr.Op)
		assert.Contains(t, err.Error(), "could not read JSON")
	})

	t.Run("ReadGOB", func(t *testing.T) {
		_, err := NewGOBSerializer[Person]().Deserialize([]byte{0xff, 0x00, 0x13})
		var serErr *Error
		require.ErrorAs(t, err, &serErr)
		assert.Equal(t, "GOB", serErr.Format)
	})

	t.Run("ReadXML", func(t *testing.T) {
		_, err := NewXMLSerializer[int]().Deserialize([]byte("<int>abc</int>"))
		var serErr *Error
		require.ErrorAs(t, err, &serErr)
	})

	t.Run("WriteUnsupportedType", func(t *testing.T) {
		_, err := NewJSONSerializer[chan int]().Serialize(make(chan int))
		var serErr *Error
		require.ErrorAs(t, err, &serErr)
	})
}

func TestProtoSerializer(t *testing.T) {
	s := NewProtoSerializer[*wrapperspb.StringValue]()

	data, err := s.Serialize(wrapperspb.String("hello"))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := s.Deserialize(data)
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("hello"), got))

	data, err = s.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyArray, data)

	got, err = s.Deserialize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Deserialize([]byte{0x0a, 0xff})
	var serErr *Error
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "PROTO", serErr.Format)
}

func TestStringSerializer(t *testing.T) {
	s := NewStringSerializer()

	data, err := s.Serialize("key:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("key:1"), data)

	got, err := s.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "key:1", got)

	data, err = s.Serialize("")
	require.NoError(t, err)
	assert.Equal(t, EmptyArray, data)

	got, err = s.Deserialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBytesSerializer(t *testing.T) {
	s := NewBytesSerializer()

	data, err := s.Serialize([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	data, err = s.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyArray, data)

	got, err := s.Deserialize(EmptyArray)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecimalSerializer(t *testing.T) {
	t.Run("Int64", func(t *testing.T) {
		s := NewDecimalSerializer[int64]()
		for _, v := range []int64{0, 42, -7, math.MaxInt64} {
			data, err := s.Serialize(v)
			require.NoError(t, err)
			got, err := s.Deserialize(data)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
		data, _ := s.Serialize(42)
		assert.Equal(t, "42", string(data))
	})

	t.Run("Float64", func(t *testing.T) {
		s := NewDecimalSerializer[float64]()
		data, err := s.Serialize(1.5)
		require.NoError(t, err)
		assert.Equal(t, "1.5", string(data))
		got, err := s.Deserialize([]byte("10.25"))
		require.NoError(t, err)
		assert.Equal(t, 10.25, got)
	})

	t.Run("Uint8", func(t *testing.T) {
		s := NewDecimalSerializer[uint8]()
		data, err := s.Serialize(255)
		require.NoError(t, err)
		assert.Equal(t, "255", string(data))
		got, err := s.Deserialize(data)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), got)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		tests := []struct {
			name string
			read func() error
		}{
			{"Int8", func() error { _, err := NewDecimalSerializer[int8]().Deserialize([]byte("300")); return err }},
			{"Uint8", func() error { _, err := NewDecimalSerializer[uint8]().Deserialize([]byte("256")); return err }},
			{"Uint16Negative", func() error { _, err := NewDecimalSerializer[uint16]().Deserialize([]byte("-1")); return err }},
			{"Float32", func() error { _, err := NewDecimalSerializer[float32]().Deserialize([]byte("1e300")); return err }},
			{"Int16Float", func() error { _, err := NewDecimalSerializer[int16]().Deserialize([]byte("70000.0")); return err }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var serErr *Error
				require.ErrorAs(t, tt.read(), &serErr)
				assert.Equal(t, "DECIMAL", serErr.Format)
			})
		}
	})

	t.Run("FloatForInteger", func(t *testing.T) {
		s := NewDecimalSerializer[int64]()
		got, err := s.Deserialize([]byte("12.0"))
		require.NoError(t, err)
		assert.Equal(t, int64(12), got)

		_, err = s.Deserialize([]byte("1.9"))
		var serErr *Error
		require.ErrorAs(t, err, &serErr)
		assert.Equal(t, "DECIMAL", serErr.Format)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := NewDecimalSerializer[int]().Deserialize([]byte("twelve"))
		var serErr *Error
		require.ErrorAs(t, err, &serErr)
		assert.Equal(t, "DECIMAL", serErr.Format)
	})
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		s, err := ByName[Person](name)
		require.NoError(t, err, name)
		require.NotNil(t, s)
	}

	s, err := ByName[int]("JSON")
	require.NoError(t, err)
	data, err := s.Serialize(7)
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	_, err = ByName[int]("pickle")
	assert.Error(t, err)
}
