package serializer

import (
	"encoding/xml"
)

// NewXMLSerializer creates a new serializer using xml marshalling.
// T must be a type encoding/xml can marshal (maps are not supported).
func NewXMLSerializer[T any]() IRedisSerializer[T] {
	return &xmlSerializerImpl[T]{}
}

// xmlSerializerImpl implements the IRedisSerializer interface using xml encoding
type xmlSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (x xmlSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	b, err := xml.Marshal(value)
	if err != nil {
		return nil, writeError("XML", err)
	}
	return b, nil
}

func (x xmlSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var value T
	if IsEmpty(data) {
		return value, nil
	}
	if err := xml.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, readError("XML", err)
	}
	return value, nil
}
