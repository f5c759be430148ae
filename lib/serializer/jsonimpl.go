package serializer

import (
	"encoding/json"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer[T any]() IRedisSerializer[T] {
	return &jsonSerializerImpl[T]{}
}

// jsonSerializerImpl implements the IRedisSerializer interface using json encoding
type jsonSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, writeError("JSON", err)
	}
	return b, nil
}

func (j jsonSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var value T
	if IsEmpty(data) {
		return value, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, readError("JSON", err)
	}
	return value, nil
}
