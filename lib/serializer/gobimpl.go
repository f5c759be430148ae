package serializer

import (
	"bytes"
	"encoding/gob"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// This is the default serializer of every template.
func NewGOBSerializer[T any]() IRedisSerializer[T] {
	return &gobSerializerImpl[T]{}
}

// gobSerializerImpl implements the IRedisSerializer interface using gob encoding
type gobSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	// Encoding through a pointer keeps interface typed values decodable
	if err := enc.Encode(&value); err != nil {
		return nil, writeError("GOB", err)
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var value T
	if IsEmpty(data) {
		return value, nil
	}
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&value); err != nil {
		var zero T
		return zero, readError("GOB", err)
	}
	return value, nil
}
